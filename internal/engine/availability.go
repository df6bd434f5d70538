package engine

import (
	"sort"

	"course-ledger/internal/model"
)

// Availability 查询窗口内的忙闲划分
type Availability struct {
	Free    []string `json:"free"`
	Busy    []string `json:"busy"`
	Skipped int      `json:"skipped"` // 因上下课时间无效而未参与判断的记录数
}

// TeacherUniverse 全部记录中出现过的实际上课教师（去空白、去重、升序）
func TeacherUniverse(records []model.CourseRecord) []string {
	seen := make(map[string]struct{})
	for i := range records {
		if t := records[i].Teacher(); t != "" {
			seen[t] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

// FreeTeachers 计算窗口内的空闲与忙碌教师
//
// 教师全集取自全部记录；只有日期落在窗口日期范围内的记录参与重叠判断，
// 每条记录以自身日期锚定区间。Free 与 Busy 互不相交，并集即教师全集。
func FreeTeachers(records []model.CourseRecord, w Window) (*Availability, error) {
	if !w.End.After(w.Start) {
		return nil, ErrInvalidWindow
	}
	res := &Availability{Free: []string{}, Busy: []string{}}
	if len(records) == 0 {
		return res, ErrEmptyStore
	}

	universe := TeacherUniverse(records)
	busy := make(map[string]struct{})
	query := w.Interval()

	for i := range records {
		r := &records[i]
		teacher := r.Teacher()
		if teacher == "" || !w.covers(r.Date) {
			continue
		}
		iv, err := RecordInterval(r)
		if err != nil {
			res.Skipped++
			continue
		}
		if Overlaps(iv, query) {
			busy[teacher] = struct{}{}
		}
	}

	for _, t := range universe {
		if _, ok := busy[t]; ok {
			res.Busy = append(res.Busy, t)
		} else {
			res.Free = append(res.Free, t)
		}
	}
	return res, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
