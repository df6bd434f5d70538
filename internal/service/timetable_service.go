package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"

	"course-ledger/config"
	"course-ledger/internal/dto"
	"course-ledger/internal/engine"
	"course-ledger/internal/model"
	"course-ledger/internal/store"
)

// TimetableService 周课表查询与导出接口
//
// 设计说明：
//   - 课表网格由 engine.ProjectWeek 生成，行轴取自全部数据
//   - ICS 导出包含该周全部有效课程（同一格子的多条记录都会导出）
//   - 导出以字节返回，由 Handler 层设置响应头
type TimetableService interface {
	Weekly(ctx context.Context, req *dto.WeeklyTimetableRequest) (*dto.WeeklyTimetableResponse, error)
	ExportICS(ctx context.Context, req *dto.WeeklyTimetableRequest) ([]byte, string, error)
	ExportExcel(ctx context.Context, req *dto.WeeklyTimetableRequest) (*bytes.Buffer, string, error)
}

type timetableService struct {
	store  store.RecordStore
	opts   engine.ProjectorOptions
	loc    *time.Location
	logger *zap.Logger
}

// NewTimetableService 创建 TimetableService 实例
func NewTimetableService(st store.RecordStore, cfg *config.ScheduleConfig, logger *zap.Logger) TimetableService {
	opts := engine.ProjectorOptions{
		PeriodOrder:       cfg.PeriodOrder,
		TrustWeekdayLabel: cfg.TrustWeekdayLabel,
	}
	copy(opts.WeekdayLabels[:], cfg.WeekdayLabels)

	loc := time.UTC
	if cfg.Timezone != "" {
		if l, err := time.LoadLocation(cfg.Timezone); err == nil {
			loc = l
		} else {
			logger.Warn("时区加载失败，ICS 导出使用 UTC", zap.String("timezone", cfg.Timezone), zap.Error(err))
		}
	}
	return &timetableService{store: st, opts: opts, loc: loc, logger: logger}
}

// ────────────────────── Weekly ──────────────────────

func (s *timetableService) Weekly(_ context.Context, req *dto.WeeklyTimetableRequest) (*dto.WeeklyTimetableResponse, error) {
	weekStart, err := engine.ParseDate(req.WeekStart)
	if err != nil {
		return nil, ErrInvalidDate
	}
	snap := s.store.Snapshot()
	grid := engine.ProjectWeek(snap.Records, req.Teacher, weekStart, s.opts)

	resp := &dto.WeeklyTimetableResponse{
		Status:    dto.StatusOK,
		Teacher:   grid.Teacher,
		WeekStart: grid.WeekStart.Format(model.DateLayout),
		Empty:     grid.Empty(),
		Days:      make([]dto.TimetableDay, 0, len(grid.Days)),
		Rows:      make([]dto.TimetableRow, 0, len(grid.Rows)),
	}
	if snap.Len() == 0 {
		resp.Status = dto.StatusEmptyStore
	}
	for _, d := range grid.Days {
		resp.Days = append(resp.Days, dto.TimetableDay{Label: d.Label, Date: d.Date.Format(model.DateLayout)})
	}
	for _, row := range grid.Rows {
		out := dto.TimetableRow{Period: row.Period, Session: row.Session, Cells: make([]*dto.TimetableCell, len(row.Cells))}
		for i, c := range row.Cells {
			if c == nil {
				continue
			}
			out.Cells[i] = &dto.TimetableCell{
				Class:      c.Class,
				Subject:    c.Subject,
				CourseType: c.CourseType,
				StartTime:  c.StartTime,
				EndTime:    c.EndTime,
			}
		}
		resp.Rows = append(resp.Rows, out)
	}
	return resp, nil
}

// ────────────────────── ExportICS ──────────────────────

func (s *timetableService) ExportICS(_ context.Context, req *dto.WeeklyTimetableRequest) ([]byte, string, error) {
	weekStart, err := engine.ParseDate(req.WeekStart)
	if err != nil {
		return nil, "", ErrInvalidDate
	}
	teacher := strings.TrimSpace(req.Teacher)
	occurrences := engine.WeekOccurrences(s.store.Snapshot().Records, teacher, weekStart)

	now := time.Now()
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//course-ledger//timetable//CN")
	cal.SetXWRCalName(fmt.Sprintf("%s %s 周课表", teacher, weekStart.Format(model.DateLayout)))
	cal.SetXWRTimezone(s.loc.String())

	for i := range occurrences {
		r := &occurrences[i]
		start, _ := engine.ParseClock(r.StartTime)
		end, _ := engine.ParseClock(r.EndTime)

		evt := cal.AddEvent(fmt.Sprintf("%s@course-ledger", r.ID))
		evt.SetCreatedTime(now)
		evt.SetDtStampTime(now)
		evt.SetStartAt(s.wallClock(r.Date, start))
		evt.SetEndAt(s.wallClock(r.Date, end))
		evt.SetSummary(strings.TrimSpace(r.Subject + " " + r.Class))
		if r.Class != "" {
			evt.SetLocation(r.Class)
		}
		evt.SetDescription(describe(r))
	}

	filename := fmt.Sprintf("课表_%s_%s.ics", teacher, weekStart.Format("20060102"))
	return []byte(cal.Serialize()), filename, nil
}

// wallClock 记录中的日期与时刻是本地墙上时间，导出时按配置时区解释
func (s *timetableService) wallClock(date time.Time, c engine.Clock) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, c.Hour, c.Minute, 0, 0, s.loc)
}

func describe(r *model.CourseRecord) string {
	var parts []string
	for _, kv := range [][2]string{
		{"课程类型", r.CourseType},
		{"时段", r.Period},
		{"节次", r.Session},
		{"课时", r.Hours.String()},
		{"调代课类型", r.Type},
		{"调代课事由", r.Reason},
	} {
		if kv[1] != "" {
			parts = append(parts, kv[0]+": "+kv[1])
		}
	}
	return strings.Join(parts, "\n")
}

// ────────────────────── ExportExcel ──────────────────────
//
// 输出格式：
//   - 第 1 行：教师姓名（合并前两列）| 星期一 (日期) … 星期日 (日期)
//   - 第 2 行：时段 | 节次
//   - 数据行：同一时段的节次合并时段单元格；格子内容为 "科目\n班级"

func (s *timetableService) ExportExcel(ctx context.Context, req *dto.WeeklyTimetableRequest) (*bytes.Buffer, string, error) {
	table, err := s.Weekly(ctx, req)
	if err != nil {
		return nil, "", err
	}

	const sheet = "周课表"
	f := newWorkbook(sheet)
	head := headerStyle(f)
	wrap := wrapStyle(f)

	_ = f.SetColWidth(sheet, "A", "B", 10)
	_ = f.SetColWidth(sheet, "C", "I", 18)

	_ = f.SetCellValue(sheet, cell(1, 1), table.Teacher)
	_ = f.MergeCell(sheet, cell(1, 1), cell(2, 1))
	_ = f.SetCellValue(sheet, cell(1, 2), "时段")
	_ = f.SetCellValue(sheet, cell(2, 2), "节次")
	for i, d := range table.Days {
		_ = f.SetCellValue(sheet, cell(3+i, 1), d.Label+"\n"+d.Date)
	}
	_ = f.SetCellStyle(sheet, cell(1, 1), cell(9, 2), head)

	row := 3
	for i := 0; i < len(table.Rows); {
		period := table.Rows[i].Period
		first := row
		for ; i < len(table.Rows) && table.Rows[i].Period == period; i++ {
			r := table.Rows[i]
			_ = f.SetCellValue(sheet, cell(2, row), r.Session)
			for col, c := range r.Cells {
				if c != nil {
					_ = f.SetCellValue(sheet, cell(3+col, row), c.Subject+"\n"+c.Class)
				}
			}
			row++
		}
		_ = f.SetCellValue(sheet, cell(1, first), period)
		if row-1 > first {
			_ = f.MergeCell(sheet, cell(1, first), cell(1, row-1))
		}
	}
	if row > 3 {
		_ = f.SetCellStyle(sheet, cell(1, 3), cell(9, row-1), wrap)
	}

	buf, err := writeWorkbook(f)
	if err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", err
	}
	filename := fmt.Sprintf("课表_%s_%s.xlsx", table.Teacher, strings.ReplaceAll(table.WeekStart, "-", ""))
	return buf, filename, nil
}
