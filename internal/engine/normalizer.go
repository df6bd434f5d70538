package engine

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"course-ledger/internal/model"
)

// ── 记录规范化 ──────────────────────────────────────────────
//
// 职责：将导入表格中的一行（单元格类型不一）转为 CourseRecord。
//
//   - 日期：数值按表格序列号处理（1899-12-30 起算），文本按常见格式解析；
//     同一批数据中两种形式可以混用，按值的类型判断而非按表头声明
//   - 时间：取文本中最后一个 H:mm(:ss)? 片段，只保留 HH:MM
//   - 课时：文本按十进制数解析并保留两位小数，无法解析或缺失时视为 0
//   - 日期无法解析的行作为 RowError 返回，不影响同批其他行
// ─────────────────────────────────────────────────────────────

// 规范字段名（导入列映射的键）
const (
	FieldDate           = "date"
	FieldStartTime      = "start_time"
	FieldEndTime        = "end_time"
	FieldWeek           = "week"
	FieldSession        = "session"
	FieldPeriod         = "period"
	FieldWeekday        = "weekday"
	FieldGrade          = "grade"
	FieldClass          = "class"
	FieldSubject        = "subject"
	FieldCourseType     = "course_type"
	FieldPlannedTeacher = "planned_teacher"
	FieldActualTeacher  = "actual_teacher"
	FieldType           = "type"
	FieldReason         = "reason"
	FieldHours          = "hours"
)

// Fields 全部规范字段，顺序即模版列顺序
var Fields = []string{
	FieldDate, FieldStartTime, FieldEndTime, FieldWeek, FieldWeekday, FieldSession,
	FieldPeriod, FieldGrade, FieldClass, FieldSubject, FieldCourseType, FieldHours,
	FieldPlannedTeacher, FieldActualTeacher, FieldType, FieldReason,
}

// RequiredFields 表头中必须出现的字段
var RequiredFields = []string{FieldDate, FieldStartTime, FieldEndTime, FieldActualTeacher}

// RawRow 导入表格的一行：表头 → 单元格值（数值单元格为 float64，其余为 string）
type RawRow map[string]any

// SourceRow 带行号的原始行
type SourceRow struct {
	Line   int
	Values RawRow
}

// FieldMapping 规范字段名 → 表头
type FieldMapping map[string]string

// Header 返回字段对应的表头；未配置时退回字段名本身
func (m FieldMapping) Header(field string) string {
	if h := strings.TrimSpace(m[field]); h != "" {
		return h
	}
	return field
}

// Missing 返回 headers 中缺失的必需字段
func (m FieldMapping) Missing(headers []string, required ...string) []string {
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[strings.TrimSpace(h)] = true
	}
	var missing []string
	for _, f := range required {
		if !present[m.Header(f)] {
			missing = append(missing, f)
		}
	}
	return missing
}

func (m FieldMapping) lookup(row RawRow, field string) (any, bool) {
	v, ok := row[m.Header(field)]
	if !ok || v == nil {
		return nil, false
	}
	if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
		return nil, false
	}
	return v, true
}

// NormalizeResult 批量规范化结果
type NormalizeResult struct {
	Records  []model.CourseRecord
	Errors   []*RowError
	Warnings []RowWarning
}

// NormalizeRows 批量规范化；成功的记录按输入顺序编号 Seq
func NormalizeRows(rows []SourceRow, mapping FieldMapping) *NormalizeResult {
	res := &NormalizeResult{Records: make([]model.CourseRecord, 0, len(rows))}
	for _, src := range rows {
		rec, warnings, err := Normalize(src.Values, mapping)
		for _, w := range warnings {
			w.Row = src.Line
			res.Warnings = append(res.Warnings, w)
		}
		if err != nil {
			rowErr, ok := err.(*RowError)
			if !ok {
				rowErr = &RowError{Field: FieldDate, Reason: err.Error()}
			}
			rowErr.Row = src.Line
			res.Errors = append(res.Errors, rowErr)
			continue
		}
		rec.Seq = len(res.Records)
		res.Records = append(res.Records, rec)
	}
	return res
}

// Normalize 规范化单行；返回的 RowError/RowWarning 行号为 0，由调用方填充
func Normalize(row RawRow, mapping FieldMapping) (model.CourseRecord, []RowWarning, error) {
	var rec model.CourseRecord
	var warnings []RowWarning

	raw, ok := mapping.lookup(row, FieldDate)
	if !ok {
		return rec, nil, &RowError{Field: FieldDate, Reason: "上课日期为空"}
	}
	date, err := ResolveDate(raw)
	if err != nil {
		return rec, nil, &RowError{Field: FieldDate, Reason: err.Error()}
	}
	rec.Date = date

	for _, f := range []struct {
		field string
		dst   *string
	}{
		{FieldStartTime, &rec.StartTime},
		{FieldEndTime, &rec.EndTime},
	} {
		v, ok := mapping.lookup(row, f.field)
		if !ok {
			warnings = append(warnings, RowWarning{Field: f.field, Reason: "时间为空"})
			continue
		}
		c, err := ExtractClock(v)
		if err != nil {
			warnings = append(warnings, RowWarning{Field: f.field, Reason: err.Error()})
			continue
		}
		*f.dst = c.String()
	}

	if v, ok := mapping.lookup(row, FieldHours); ok {
		h, err := CoerceHours(v)
		if err != nil {
			warnings = append(warnings, RowWarning{Field: FieldHours, Reason: err.Error()})
		}
		rec.Hours = h
	}

	if v, ok := mapping.lookup(row, FieldWeek); ok {
		rec.Week = coerceInt(v)
	}

	text := func(field string) string {
		v, ok := mapping.lookup(row, field)
		if !ok {
			return ""
		}
		return cellText(v)
	}
	rec.Session = text(FieldSession)
	rec.Period = text(FieldPeriod)
	rec.Weekday = text(FieldWeekday)
	rec.Grade = text(FieldGrade)
	rec.Class = text(FieldClass)
	rec.Subject = text(FieldSubject)
	rec.CourseType = text(FieldCourseType)
	rec.PlannedTeacher = text(FieldPlannedTeacher)
	rec.ActualTeacher = text(FieldActualTeacher)
	rec.Type = text(FieldType)
	rec.Reason = text(FieldReason)

	return rec, warnings, nil
}

// ── 日期 ──

// serialEpoch 表格日期序列号的零点（已吸收 1900 闰年历史偏差）
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

var (
	slashDateRe = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{2}|\d{4})$`)
	// 两位年份在前的 yy-m-d / yy.m.d
	shortYearRe = regexp.MustCompile(`^(\d{2})[-.](\d{1,2})[-.](\d{1,2})$`)
	dateLayouts = []string{"2006-1-2", "2006/1/2", "2006.1.2", "2006年1月2日"}
)

// ResolveDate 按值类型解析日期：数值为序列号，文本直接解析
func ResolveDate(v any) (time.Time, error) {
	switch val := v.(type) {
	case float64:
		return SerialToDate(val)
	case int:
		return SerialToDate(float64(val))
	case int64:
		return SerialToDate(float64(val))
	case time.Time:
		return DateOf(val), nil
	case string:
		return parseDateText(val)
	default:
		return time.Time{}, fmt.Errorf("不支持的日期类型 %T", v)
	}
}

// SerialToDate 表格序列号 → 日期，小数部分（时刻）被忽略
func SerialToDate(serial float64) (time.Time, error) {
	if math.IsNaN(serial) || math.IsInf(serial, 0) || serial < 1 {
		return time.Time{}, fmt.Errorf("无效的日期序列号 %v", serial)
	}
	return serialEpoch.AddDate(0, 0, int(math.Floor(serial))), nil
}

func parseDateText(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("上课日期为空")
	}
	// 去掉日期后附带的时刻部分
	if i := strings.IndexAny(s, " T"); i > 0 {
		s = s[:i]
	}

	if m := slashDateRe.FindStringSubmatch(s); m != nil {
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if len(m[3]) == 2 {
			year += 2000
		}
		return civilDate(year, month, day, s)
	}
	if m := shortYearRe.FindStringSubmatch(s); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		return civilDate(2000+year, month, day, s)
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("无法识别的日期 %q", s)
}

// civilDate 构造日期并拒绝 2/30 这类会被 time.Date 自动进位的值
func civilDate(year, month, day int, src string) (time.Time, error) {
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return time.Time{}, fmt.Errorf("无效的日期 %q", src)
	}
	return t, nil
}

// ── 时间 ──

var (
	clockRe = regexp.MustCompile(`(\d{1,2}):(\d{2})(?::(\d{2}))?`)
	// 紧跟在时刻之后的 AM/PM（也接受 a.m. 写法）
	meridiemRe = regexp.MustCompile(`^\s*([AP])\.?M\b`)
)

// ExtractClock 从单元格值中提取时刻
//
// 文本取最后一个 H:mm(:ss)? 片段并丢弃秒；带 AM/PM 时换算为 24 小时制。
// 数值视为一天中的比例（可带日期整数部分）。
func ExtractClock(v any) (Clock, error) {
	switch val := v.(type) {
	case float64:
		return fractionToClock(val)
	case time.Time:
		return Clock{Hour: val.Hour(), Minute: val.Minute()}, nil
	case string:
		return parseClockText(val)
	default:
		return Clock{}, fmt.Errorf("不支持的时间类型 %T", v)
	}
}

func parseClockText(s string) (Clock, error) {
	matches := clockRe.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		return Clock{}, fmt.Errorf("无法识别的时间 %q", s)
	}
	last := matches[len(matches)-1]
	hour, _ := strconv.Atoi(s[last[2]:last[3]])
	minute, _ := strconv.Atoi(s[last[4]:last[5]])

	if m := meridiemRe.FindStringSubmatch(strings.ToUpper(s[last[1]:])); m != nil {
		switch {
		case m[1] == "P" && hour < 12:
			hour += 12
		case m[1] == "A" && hour == 12:
			hour = 0
		}
	}

	c := Clock{Hour: hour, Minute: minute}
	if !c.valid() {
		return Clock{}, fmt.Errorf("无效的时间 %q", s)
	}
	return c, nil
}

func fractionToClock(v float64) (Clock, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return Clock{}, fmt.Errorf("无效的时间数值 %v", v)
	}
	frac := v - math.Floor(v)
	minutes := int(math.Round(frac*24*60)) % (24 * 60)
	return Clock{Hour: minutes / 60, Minute: minutes % 60}, nil
}

// ── 课时与其他字段 ──

var leadingNumberRe = regexp.MustCompile(`^[+-]?\d+(\.\d+)?`)

// CoerceHours 课时转为非负十进制数，保留 model.HoursPlaces 位小数；
// 无法解析、为负或超出 model.MaxHours 时返回 0 与说明
func CoerceHours(v any) (decimal.Decimal, error) {
	var d decimal.Decimal
	switch val := v.(type) {
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return decimal.Zero, fmt.Errorf("无效的课时 %v", val)
		}
		d = decimal.NewFromFloat(val)
	case int:
		d = decimal.NewFromInt(int64(val))
	case decimal.Decimal:
		d = val
	case string:
		s := strings.TrimSpace(val)
		parsed, err := decimal.NewFromString(s)
		if err != nil {
			// 兼容 "2课时" 这类带单位的文本
			num := leadingNumberRe.FindString(s)
			if num == "" {
				return decimal.Zero, fmt.Errorf("无法解析的课时 %q，按 0 计", s)
			}
			parsed, _ = decimal.NewFromString(num)
		}
		d = parsed
	default:
		return decimal.Zero, fmt.Errorf("不支持的课时类型 %T，按 0 计", v)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("课时不能为负数 %s，按 0 计", d.String())
	}
	d = d.Round(model.HoursPlaces)
	if d.GreaterThan(model.MaxHours) {
		return decimal.Zero, fmt.Errorf("课时超出上限 %s，按 0 计", d.String())
	}
	return d, nil
}

var digitsRe = regexp.MustCompile(`\d+`)

func coerceInt(v any) int {
	switch val := v.(type) {
	case float64:
		return int(val)
	case int:
		return val
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
			return n
		}
		if m := digitsRe.FindString(val); m != "" {
			n, _ := strconv.Atoi(m)
			return n
		}
	}
	return 0
}

func cellText(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
