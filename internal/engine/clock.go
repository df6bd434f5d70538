package engine

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Clock 一天中的时刻（精确到分钟）
type Clock struct {
	Hour   int
	Minute int
}

// ParseClock 解析规范的 "HH:MM" 文本（也接受 "H:MM"）
func ParseClock(s string) (Clock, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return Clock{}, fmt.Errorf("无效的时间 %q", s)
	}
	hour, err := strconv.Atoi(h)
	if err != nil {
		return Clock{}, fmt.Errorf("无效的时间 %q", s)
	}
	minute, err := strconv.Atoi(m)
	if err != nil {
		return Clock{}, fmt.Errorf("无效的时间 %q", s)
	}
	c := Clock{Hour: hour, Minute: minute}
	if !c.valid() {
		return Clock{}, fmt.Errorf("无效的时间 %q", s)
	}
	return c, nil
}

func (c Clock) valid() bool {
	return c.Hour >= 0 && c.Hour < 24 && c.Minute >= 0 && c.Minute < 60
}

// String 格式化为 "HH:MM"
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// On 将时刻落到指定日期上（UTC）
func (c Clock) On(date time.Time) time.Time {
	d := DateOf(date)
	return d.Add(time.Duration(c.Hour)*time.Hour + time.Duration(c.Minute)*time.Minute)
}

// DateOf 截断为当天零点（UTC），忽略原始时区的时刻部分
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate 解析 "2006-01-02" 格式的查询日期
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("无效的日期 %q", s)
	}
	return t, nil
}

// WeekdayIndex 周一为 0 … 周日为 6
func WeekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// sameOrBetween 判断 d 是否落在 [from, to] 闭区间（按日）
func sameOrBetween(d, from, to time.Time) bool {
	d = DateOf(d)
	return !d.Before(DateOf(from)) && !d.After(DateOf(to))
}
