package engine

import (
	"strings"

	"course-ledger/internal/model"
)

// CourseTypes 全部记录中出现过的非空课程类型（升序）
func CourseTypes(records []model.CourseRecord) []string {
	seen := make(map[string]struct{})
	for i := range records {
		if ct := strings.TrimSpace(records[i].CourseType); ct != "" {
			seen[ct] = struct{}{}
		}
	}
	return sortedKeys(seen)
}
