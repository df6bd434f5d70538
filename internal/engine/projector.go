package engine

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"course-ledger/internal/model"
)

// DefaultPeriodOrder 默认时段顺序
var DefaultPeriodOrder = []string{"早晨", "上午", "下午", "晚上"}

// DefaultWeekdayLabels 默认列标签，周一在前
var DefaultWeekdayLabels = [7]string{"星期一", "星期二", "星期三", "星期四", "星期五", "星期六", "星期日"}

// ProjectorOptions 周课表投影选项
type ProjectorOptions struct {
	PeriodOrder   []string
	WeekdayLabels [7]string
	// TrustWeekdayLabel 为 true 时按记录中存储的星期文本定位列，否则由日期推导
	TrustWeekdayLabel bool
}

func (o ProjectorOptions) withDefaults() ProjectorOptions {
	if len(o.PeriodOrder) == 0 {
		o.PeriodOrder = DefaultPeriodOrder
	}
	for _, l := range o.WeekdayLabels {
		if l == "" {
			o.WeekdayLabels = DefaultWeekdayLabels
			break
		}
	}
	return o
}

// Cell 课表单元格内容
type Cell struct {
	Class      string `json:"class"`
	Subject    string `json:"subject"`
	CourseType string `json:"course_type"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
}

// Day 课表列
type Day struct {
	Label string    `json:"label"`
	Date  time.Time `json:"date"`
}

// GridRow 课表行：一个 (时段, 节次) 组合
type GridRow struct {
	Period  string   `json:"period"`
	Session string   `json:"session"`
	Cells   [7]*Cell `json:"cells"`
}

// WeekGrid 单个教师一周的课表
type WeekGrid struct {
	Teacher   string    `json:"teacher"`
	WeekStart time.Time `json:"week_start"`
	Days      [7]Day    `json:"days"`
	Rows      []GridRow `json:"rows"`
}

// Empty 一周内没有任何课程
func (g *WeekGrid) Empty() bool {
	for _, row := range g.Rows {
		for _, c := range row.Cells {
			if c != nil {
				return false
			}
		}
	}
	return true
}

// ProjectWeek 将教师在 [weekStart, weekStart+6] 内的课程投影为周课表
//
// 行轴取自全部记录（而非该教师本周的记录），因此同一数据集下各教师、各周的课表行一致。
// 第 i 列为 weekStart+i 日，列标签取该日实际的星期，weekStart 不必是周一。
// 同一格子有多条记录时取规范顺序中的第一条。
func ProjectWeek(records []model.CourseRecord, teacher string, weekStart time.Time, opts ProjectorOptions) *WeekGrid {
	opts = opts.withDefaults()
	teacher = strings.TrimSpace(teacher)
	weekStart = DateOf(weekStart)
	weekEnd := weekStart.AddDate(0, 0, 6)

	grid := &WeekGrid{Teacher: teacher, WeekStart: weekStart}
	for i := range grid.Days {
		date := weekStart.AddDate(0, 0, i)
		grid.Days[i] = Day{Label: opts.WeekdayLabels[WeekdayIndex(date)], Date: date}
	}

	grid.Rows = buildRowAxis(records, opts.PeriodOrder)
	rowIndex := make(map[[2]string]int, len(grid.Rows))
	for i, row := range grid.Rows {
		rowIndex[[2]string{row.Period, row.Session}] = i
	}

	for i := range records {
		r := &records[i]
		if teacher == "" || r.Teacher() != teacher || !sameOrBetween(r.Date, weekStart, weekEnd) {
			continue
		}
		if _, err := RecordInterval(r); err != nil {
			continue
		}
		col := columnOf(r, grid, opts.TrustWeekdayLabel)
		if col < 0 {
			continue
		}
		ri, ok := rowIndex[[2]string{strings.TrimSpace(r.Period), strings.TrimSpace(r.Session)}]
		if !ok || grid.Rows[ri].Cells[col] != nil {
			continue
		}
		grid.Rows[ri].Cells[col] = &Cell{
			Class:      r.Class,
			Subject:    r.Subject,
			CourseType: r.CourseType,
			StartTime:  r.StartTime,
			EndTime:    r.EndTime,
		}
	}
	return grid
}

// WeekOccurrences 教师在 [weekStart, weekStart+6] 内全部有效的上课记录（规范顺序）
func WeekOccurrences(records []model.CourseRecord, teacher string, weekStart time.Time) []model.CourseRecord {
	teacher = strings.TrimSpace(teacher)
	weekStart = DateOf(weekStart)
	weekEnd := weekStart.AddDate(0, 0, 6)

	var out []model.CourseRecord
	for i := range records {
		r := &records[i]
		if teacher == "" || r.Teacher() != teacher || !sameOrBetween(r.Date, weekStart, weekEnd) {
			continue
		}
		if _, err := RecordInterval(r); err != nil {
			continue
		}
		out = append(out, *r)
	}
	return out
}

// columnOf 记录所在列：默认按日期的实际星期，trustLabel 时按记录中的星期文本
func columnOf(r *model.CourseRecord, grid *WeekGrid, trustLabel bool) int {
	label := strings.TrimSpace(r.Weekday)
	for i, d := range grid.Days {
		if trustLabel {
			if d.Label == label {
				return i
			}
			continue
		}
		if WeekdayIndex(d.Date) == WeekdayIndex(r.Date) {
			return i
		}
	}
	return -1
}

// buildRowAxis 时段按配置顺序，未知时段按首次出现追加；节次数字升序，非数字按首次出现排在后面
func buildRowAxis(records []model.CourseRecord, periodOrder []string) []GridRow {
	type bucket struct {
		sessions []string
		seen     map[string]bool
	}
	buckets := make(map[string]*bucket)
	var extra []string

	known := make(map[string]bool, len(periodOrder))
	for _, p := range periodOrder {
		known[p] = true
	}

	for i := range records {
		r := &records[i]
		if r.Teacher() == "" {
			continue
		}
		period := strings.TrimSpace(r.Period)
		session := strings.TrimSpace(r.Session)
		b, ok := buckets[period]
		if !ok {
			b = &bucket{seen: make(map[string]bool)}
			buckets[period] = b
			if !known[period] {
				extra = append(extra, period)
			}
		}
		if !b.seen[session] {
			b.seen[session] = true
			b.sessions = append(b.sessions, session)
		}
	}

	var rows []GridRow
	for _, period := range append(append([]string{}, periodOrder...), extra...) {
		b, ok := buckets[period]
		if !ok {
			continue
		}
		for _, s := range sortSessions(b.sessions) {
			rows = append(rows, GridRow{Period: period, Session: s})
		}
	}
	return rows
}

func sortSessions(sessions []string) []string {
	out := append([]string(nil), sessions...)
	sort.SliceStable(out, func(i, j int) bool {
		ni, errI := strconv.ParseFloat(out[i], 64)
		nj, errJ := strconv.ParseFloat(out[j], 64)
		switch {
		case errI == nil && errJ == nil:
			return ni < nj
		case errI == nil:
			return true
		default:
			return false
		}
	})
	return out
}
