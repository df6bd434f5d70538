package engine

import (
	"time"

	"github.com/shopspring/decimal"

	"course-ledger/internal/model"
)

func day(s string) time.Time {
	t, err := time.Parse(model.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func clock(s string) Clock {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

func rec(teacher, date, start, end string) model.CourseRecord {
	return model.CourseRecord{
		ActualTeacher: teacher,
		Date:          day(date),
		StartTime:     start,
		EndTime:       end,
	}
}

func hoursRec(teacher, date, courseType, hours string) model.CourseRecord {
	r := rec(teacher, date, "09:00", "10:00")
	r.CourseType = courseType
	r.Hours = decimal.RequireFromString(hours)
	return r
}

func slotRec(teacher, date, period, session, class string) model.CourseRecord {
	r := rec(teacher, date, "08:00", "08:45")
	r.Period = period
	r.Session = session
	r.Class = class
	r.Subject = "数学"
	return r
}

func window(date, start, end string) Window {
	w, err := NewWindow(day(date), clock(start), day(date), clock(end))
	if err != nil {
		panic(err)
	}
	return w
}
