package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverlaps(t *testing.T) {
	d := day("2025-04-01")
	iv := func(start, end string) Interval {
		return Interval{Start: clock(start).On(d), End: clock(end).On(d)}
	}

	tests := []struct {
		name string
		a, b Interval
		want bool
	}{
		{"包含", iv("09:00", "10:00"), iv("09:30", "09:45"), true},
		{"部分重叠", iv("09:00", "10:00"), iv("09:59", "11:00"), true},
		{"首尾相接", iv("09:00", "10:00"), iv("10:00", "11:00"), false},
		{"完全分离", iv("09:00", "10:00"), iv("13:00", "14:00"), false},
		{"相同区间", iv("09:00", "10:00"), iv("09:00", "10:00"), true},
		{"退化区间", iv("09:30", "09:30"), iv("09:00", "10:00"), false},
		{"倒置区间", iv("10:00", "09:00"), iv("09:00", "10:00"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.a, tt.b))
			assert.Equal(t, tt.want, Overlaps(tt.b, tt.a), "重叠判断应对称")
		})
	}
}

func TestOverlaps_DegenerateWithItself(t *testing.T) {
	d := day("2025-04-01")
	iv := Interval{Start: clock("09:00").On(d), End: clock("09:00").On(d)}
	assert.False(t, Overlaps(iv, iv))
}

func TestNewInterval(t *testing.T) {
	d := day("2025-04-01")

	iv, err := NewInterval(d, clock("08:00"), clock("08:45"))
	require.NoError(t, err)
	assert.Equal(t, "2025-04-01T08:00:00Z", iv.Start.Format("2006-01-02T15:04:05Z07:00"))

	_, err = NewInterval(d, clock("09:00"), clock("09:00"))
	assert.True(t, errors.Is(err, ErrInvalidInterval))
}

func TestRecordInterval_MissingTime(t *testing.T) {
	r := rec("A", "2025-04-01", "", "10:00")
	_, err := RecordInterval(&r)
	assert.ErrorIs(t, err, ErrInvalidInterval)
}

func TestNewWindow(t *testing.T) {
	_, err := NewWindow(day("2025-04-01"), clock("10:00"), day("2025-04-01"), clock("09:00"))
	assert.ErrorIs(t, err, ErrInvalidWindow)

	_, err = NewWindow(day("2025-04-01"), clock("10:00"), day("2025-04-01"), clock("10:00"))
	assert.ErrorIs(t, err, ErrInvalidWindow)

	w, err := NewWindow(day("2025-04-01"), clock("22:00"), day("2025-04-02"), clock("02:00"))
	require.NoError(t, err)
	assert.True(t, w.covers(day("2025-04-02")))
	assert.False(t, w.covers(day("2025-04-03")))
}

func TestParseClock(t *testing.T) {
	c, err := ParseClock("9:05")
	require.NoError(t, err)
	assert.Equal(t, "09:05", c.String())

	for _, bad := range []string{"", "0905", "24:00", "12:60", "ab:cd"} {
		_, err := ParseClock(bad)
		assert.Error(t, err, bad)
	}
}
