package engine

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testMapping = FieldMapping{
	FieldDate:          "上课日期",
	FieldStartTime:     "上课时间",
	FieldEndTime:       "下课时间",
	FieldActualTeacher: "实际上课老师",
	FieldCourseType:    "课程类型",
	FieldHours:         "课时数",
	FieldSession:       "节次",
	FieldWeek:          "周次",
}

func TestNormalize_SerialDateAndMeridiemTime(t *testing.T) {
	row := RawRow{
		"上课日期":   45000.0,
		"上课时间":   "09:00:00 AM",
		"下课时间":   "09:45:00 AM",
		"实际上课老师": " 张三 ",
		"课时数":    "1",
	}

	r, warnings, err := Normalize(row, testMapping)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, "2023-03-15", r.Date.Format("2006-01-02"))
	assert.Equal(t, "09:00", r.StartTime)
	assert.Equal(t, "09:45", r.EndTime)
	assert.Equal(t, "张三", r.ActualTeacher)
	assert.True(t, r.Hours.Equal(decimal.NewFromInt(1)))
}

func TestResolveDate(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{"2025-04-01", "2025-04-01"},
		{"2025/4/1", "2025-04-01"},
		{"2025-4-1", "2025-04-01"},
		{"4/1/25", "2025-04-01"},
		{"4/1/2025", "2025-04-01"},
		{"2025年4月1日", "2025-04-01"},
		{"2025-04-01 09:00:00", "2025-04-01"},
		{"25-4-1", "2025-04-01"},
		{"25.04.01", "2025-04-01"},
		{45748.0, "2025-04-01"},
		{45748.75, "2025-04-01"},
	}
	for _, tt := range tests {
		got, err := ResolveDate(tt.in)
		require.NoError(t, err, "%v", tt.in)
		assert.Equal(t, tt.want, got.Format("2006-01-02"), "%v", tt.in)
	}

	for _, bad := range []any{"", "明天", "2/30/25", "2025-13-01", "25-2-30", 0.0, -3.0, true} {
		_, err := ResolveDate(bad)
		assert.Error(t, err, "%v", bad)
	}
}

func TestExtractClock(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{"09:00", "09:00"},
		{"9:05", "09:05"},
		{"09:00:59", "09:00"},
		{"2025-04-01 14:30:00", "14:30"},
		{"01:30 PM", "13:30"},
		{"12:15 AM", "00:15"},
		{"12:15 PM", "12:15"},
		{"第一节 08:00-08:45", "08:45"},
		{"3:15 p.m.", "15:15"},
		{"12:00 CAMPUS", "12:00"},
		{"12:00 AMPHI", "12:00"},
		{"PM场 08:00-09:30", "09:30"},
		{0.375, "09:00"},
		{45748.5, "12:00"},
	}
	for _, tt := range tests {
		c, err := ExtractClock(tt.in)
		require.NoError(t, err, "%v", tt.in)
		assert.Equal(t, tt.want, c.String(), "%v", tt.in)
	}

	for _, bad := range []any{"上午", "25:00", -0.5} {
		_, err := ExtractClock(bad)
		assert.Error(t, err, "%v", bad)
	}
}

func TestCoerceHours(t *testing.T) {
	tests := []struct {
		in      any
		want    string
		wantErr bool
	}{
		{2.0, "2", false},
		{"1.5", "1.5", false},
		{" 0.5 ", "0.5", false},
		{"2课时", "2", false},
		{"1.333", "1.33", false},
		{"2.345", "2.35", false},
		{"999999.99", "999999.99", false},
		{"1000000", "0", true},
		{"两节", "0", true},
		{"-1", "0", true},
		{-2.5, "0", true},
	}
	for _, tt := range tests {
		got, err := CoerceHours(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "%v", tt.in)
		} else {
			assert.NoError(t, err, "%v", tt.in)
		}
		assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "%v → %s", tt.in, got)
	}
}

func TestNormalizeRows_PartialFailure(t *testing.T) {
	rows := []SourceRow{
		{Line: 2, Values: RawRow{"上课日期": "2025-04-01", "上课时间": "08:00", "下课时间": "08:45", "实际上课老师": "A", "节次": 1.0, "周次": "第3周"}},
		{Line: 3, Values: RawRow{"上课日期": "不是日期", "上课时间": "08:00", "下课时间": "08:45", "实际上课老师": "B"}},
		{Line: 4, Values: RawRow{"上课日期": 45748.0, "上课时间": "", "下课时间": "??", "实际上课老师": "C", "课时数": "abc"}},
		{Line: 5, Values: RawRow{"实际上课老师": "D"}},
	}

	res := NormalizeRows(rows, testMapping)

	require.Len(t, res.Records, 2)
	assert.Equal(t, 0, res.Records[0].Seq)
	assert.Equal(t, 1, res.Records[1].Seq)
	assert.Equal(t, "1", res.Records[0].Session)
	assert.Equal(t, 3, res.Records[0].Week)
	assert.Equal(t, "C", res.Records[1].ActualTeacher)
	assert.Empty(t, res.Records[1].StartTime)
	assert.True(t, res.Records[1].Hours.IsZero())

	require.Len(t, res.Errors, 2)
	assert.Equal(t, 3, res.Errors[0].Row)
	assert.Equal(t, 5, res.Errors[1].Row)
	assert.True(t, errors.Is(res.Errors[0], ErrParseFailure))

	require.Len(t, res.Warnings, 3)
	for _, w := range res.Warnings {
		assert.Equal(t, 4, w.Row)
	}
}

func TestFieldMapping_Missing(t *testing.T) {
	headers := []string{"上课日期", " 上课时间 ", "实际上课老师"}
	missing := testMapping.Missing(headers, RequiredFields...)
	assert.Equal(t, []string{FieldEndTime}, missing)

	assert.Equal(t, "week", FieldMapping{}.Header(FieldWeek))
}

func TestNormalize_ValuesFitStoredColumns(t *testing.T) {
	longClass := strings.Repeat("实验班", 100)
	row := RawRow{
		"上课日期":   "2025-04-01",
		"上课时间":   "08:00",
		"下课时间":   "08:45",
		"实际上课老师": strings.Repeat("张", 80),
		"节次":     "第一节（含课前十分钟早读与课间操安排）",
		"课时数":    "1.333",
		"班级":     longClass,
	}
	mapping := FieldMapping{FieldClass: "班级"}
	for k, v := range testMapping {
		mapping[k] = v
	}

	r, warnings, err := Normalize(row, mapping)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, longClass, r.Class, "长文本原样保留")
	assert.Equal(t, "第一节（含课前十分钟早读与课间操安排）", r.Session)
	assert.Equal(t, "1.33", r.Hours.String(), "课时按两位小数保存，重启后合计不变")

	again, _, err := Normalize(RawRow{"上课日期": "2025-04-01", "课时数": r.Hours.String()}, mapping)
	require.NoError(t, err)
	assert.True(t, again.Hours.Equal(r.Hours))
}
