package engine

import (
	"time"

	"course-ledger/internal/model"
)

// Interval 半开区间 [Start, End)
type Interval struct {
	Start time.Time
	End   time.Time
}

// NewInterval 将日期与上下课时刻组合为绝对时间区间
func NewInterval(date time.Time, start, end Clock) (Interval, error) {
	iv := Interval{Start: start.On(date), End: end.On(date)}
	if !iv.Valid() {
		return iv, ErrInvalidInterval
	}
	return iv, nil
}

// Valid 区间非退化（End 严格晚于 Start）
func (iv Interval) Valid() bool {
	return iv.End.After(iv.Start)
}

// Overlaps 两个区间是否有公共时刻；退化区间与任何区间都不重叠
func Overlaps(a, b Interval) bool {
	if !a.Valid() || !b.Valid() {
		return false
	}
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// RecordInterval 由记录的日期与上下课时间构造区间
func RecordInterval(r *model.CourseRecord) (Interval, error) {
	start, err := ParseClock(r.StartTime)
	if err != nil {
		return Interval{}, ErrInvalidInterval
	}
	end, err := ParseClock(r.EndTime)
	if err != nil {
		return Interval{}, ErrInvalidInterval
	}
	return NewInterval(r.Date, start, end)
}

// Window 查询窗口 [Start, End)
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow 校验并构造查询窗口；跨日窗口被视为合法
func NewWindow(startDate time.Time, startClock Clock, endDate time.Time, endClock Clock) (Window, error) {
	w := Window{Start: startClock.On(startDate), End: endClock.On(endDate)}
	if !w.End.After(w.Start) {
		return w, ErrInvalidWindow
	}
	return w, nil
}

// Interval 将窗口视为区间
func (w Window) Interval() Interval {
	return Interval{Start: w.Start, End: w.End}
}

// covers 记录日期是否落在窗口覆盖的日历日内
func (w Window) covers(date time.Time) bool {
	return sameOrBetween(date, w.Start, w.End)
}
