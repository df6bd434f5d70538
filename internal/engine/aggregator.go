package engine

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"course-ledger/internal/model"
)

// TeacherFilter 统计的教师范围；All 为 true 时忽略 Teachers
type TeacherFilter struct {
	All      bool
	Teachers []string
}

// AllTeachers 不限教师
func AllTeachers() TeacherFilter { return TeacherFilter{All: true} }

// OnlyTeachers 指定教师集合
func OnlyTeachers(names ...string) TeacherFilter { return TeacherFilter{Teachers: names} }

// StatRow 单个教师的课时统计
type StatRow struct {
	Teacher string                     `json:"teacher"`
	Hours   map[string]decimal.Decimal `json:"hours"`
	Total   decimal.Decimal            `json:"total"`
}

// Statistics 课时统计结果，CourseTypes 为列顺序
type Statistics struct {
	From        time.Time `json:"from"`
	To          time.Time `json:"to"`
	CourseTypes []string  `json:"course_types"`
	Rows        []StatRow `json:"rows"`
}

// GrandTotal 所有行合计
func (s *Statistics) GrandTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, row := range s.Rows {
		sum = sum.Add(row.Total)
	}
	return sum
}

// Aggregate 按教师、课程类型汇总 [from, to] 内的课时
//
// 课程类型列只取筛选后记录中出现过的类型。使用十进制运算，结果与记录顺序无关。
func Aggregate(records []model.CourseRecord, from, to time.Time, filter TeacherFilter) (*Statistics, error) {
	from, to = DateOf(from), DateOf(to)
	if from.After(to) {
		return nil, ErrInvalidRange
	}

	var allowed map[string]bool
	if !filter.All {
		allowed = make(map[string]bool, len(filter.Teachers))
		for _, t := range filter.Teachers {
			if t = strings.TrimSpace(t); t != "" {
				allowed[t] = true
			}
		}
		if len(allowed) == 0 {
			return nil, ErrEmptyTeacherFilter
		}
	}

	stats := &Statistics{From: from, To: to, CourseTypes: []string{}, Rows: []StatRow{}}
	if len(records) == 0 {
		return stats, ErrEmptyStore
	}

	perTeacher := make(map[string]map[string]decimal.Decimal)
	types := make(map[string]struct{})
	for i := range records {
		r := &records[i]
		teacher := r.Teacher()
		if teacher == "" || !sameOrBetween(r.Date, from, to) {
			continue
		}
		if allowed != nil && !allowed[teacher] {
			continue
		}
		ct := strings.TrimSpace(r.CourseType)
		types[ct] = struct{}{}
		m, ok := perTeacher[teacher]
		if !ok {
			m = make(map[string]decimal.Decimal)
			perTeacher[teacher] = m
		}
		m[ct] = m[ct].Add(r.Hours)
	}

	stats.CourseTypes = sortedKeys(types)
	for _, teacher := range sortedKeys(perTeacher) {
		row := StatRow{Teacher: teacher, Hours: make(map[string]decimal.Decimal, len(stats.CourseTypes)), Total: decimal.Zero}
		for _, ct := range stats.CourseTypes {
			h := perTeacher[teacher][ct]
			row.Hours[ct] = h
			row.Total = row.Total.Add(h)
		}
		stats.Rows = append(stats.Rows, row)
	}
	return stats, nil
}
