package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"course-ledger/internal/engine"
	"course-ledger/internal/model"
)

// RecordPatch 单条记录的局部修改；nil 字段保持原值
type RecordPatch struct {
	Date           *time.Time
	StartTime      *string
	EndTime        *string
	Week           *int
	Session        *string
	Period         *string
	Weekday        *string
	Grade          *string
	Class          *string
	Subject        *string
	CourseType     *string
	PlannedTeacher *string
	ActualTeacher  *string
	Type           *string
	Reason         *string
	Hours          *decimal.Decimal
}

// Apply 校验并把修改写入 r；校验失败时 r 不变
//
// 时间只接受 HH:MM（空串表示清空），课时不能为负，按两位小数保存。
func (p *RecordPatch) Apply(r *model.CourseRecord) error {
	next := *r

	if p.Date != nil {
		next.Date = engine.DateOf(*p.Date)
	}
	for _, f := range []struct {
		name string
		src  *string
		dst  *string
	}{
		{engine.FieldStartTime, p.StartTime, &next.StartTime},
		{engine.FieldEndTime, p.EndTime, &next.EndTime},
	} {
		if f.src == nil {
			continue
		}
		v := strings.TrimSpace(*f.src)
		if v == "" {
			*f.dst = ""
			continue
		}
		c, err := engine.ParseClock(v)
		if err != nil {
			return fmt.Errorf("%w: %s 须为 HH:mm 格式", ErrInvalidPatch, f.name)
		}
		*f.dst = c.String()
	}
	if p.Week != nil {
		next.Week = *p.Week
	}
	if p.Hours != nil {
		if p.Hours.IsNegative() {
			return fmt.Errorf("%w: 课时不能为负数", ErrInvalidPatch)
		}
		h := p.Hours.Round(model.HoursPlaces)
		if h.GreaterThan(model.MaxHours) {
			return fmt.Errorf("%w: 课时超出上限 %s", ErrInvalidPatch, model.MaxHours)
		}
		next.Hours = h
	}

	for _, f := range []struct {
		src *string
		dst *string
	}{
		{p.Session, &next.Session},
		{p.Period, &next.Period},
		{p.Weekday, &next.Weekday},
		{p.Grade, &next.Grade},
		{p.Class, &next.Class},
		{p.Subject, &next.Subject},
		{p.CourseType, &next.CourseType},
		{p.PlannedTeacher, &next.PlannedTeacher},
		{p.ActualTeacher, &next.ActualTeacher},
		{p.Type, &next.Type},
		{p.Reason, &next.Reason},
	} {
		if f.src != nil {
			*f.dst = strings.TrimSpace(*f.src)
		}
	}

	*r = next
	return nil
}
