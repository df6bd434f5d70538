package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"course-ledger/internal/dto"
	"course-ledger/internal/engine"
	"course-ledger/internal/model"
	"course-ledger/internal/store"
)

// StatisticsService 课时统计接口
type StatisticsService interface {
	Hours(ctx context.Context, req *dto.HourStatisticsRequest) (*dto.HourStatisticsResponse, error)
	// ExportHours 统计结果导出为 Excel：老师姓名 | 各课程类型 | 总课时
	ExportHours(ctx context.Context, req *dto.HourStatisticsRequest) (*bytes.Buffer, string, error)
}

type statisticsService struct {
	store    store.RecordStore
	cache    QueryCache
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewStatisticsService 创建 StatisticsService 实例；cache 可为 nil
func NewStatisticsService(st store.RecordStore, cache QueryCache, cacheTTL time.Duration, logger *zap.Logger) StatisticsService {
	return &statisticsService{store: st, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

func (s *statisticsService) Hours(ctx context.Context, req *dto.HourStatisticsRequest) (*dto.HourStatisticsResponse, error) {
	from, err := engine.ParseDate(req.From)
	if err != nil {
		return nil, ErrInvalidDate
	}
	to, err := engine.ParseDate(req.To)
	if err != nil {
		return nil, ErrInvalidDate
	}
	filter := engine.AllTeachers()
	if !req.AllTeachers {
		filter = engine.OnlyTeachers(req.Teachers...)
	}

	snap := s.store.Snapshot()
	key := fmt.Sprintf("hours:%s:%s:%s:%s", snap.CacheTag(), req.From, req.To, filterKey(filter))
	return cachedQuery(ctx, s.cache, s.cacheTTL, s.logger, key, func() (*dto.HourStatisticsResponse, error) {
		stats, err := engine.Aggregate(snap.Records, from, to, filter)
		status := dto.StatusOK
		switch {
		case errors.Is(err, engine.ErrEmptyStore):
			status = dto.StatusEmptyStore
		case err != nil:
			return nil, err
		}
		return toHourStatistics(stats, status), nil
	})
}

func filterKey(f engine.TeacherFilter) string {
	if f.All {
		return "*"
	}
	names := make([]string, 0, len(f.Teachers))
	for _, t := range f.Teachers {
		if t = strings.TrimSpace(t); t != "" {
			names = append(names, t)
		}
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}

func toHourStatistics(stats *engine.Statistics, status string) *dto.HourStatisticsResponse {
	resp := &dto.HourStatisticsResponse{
		Status:      status,
		From:        stats.From.Format(model.DateLayout),
		To:          stats.To.Format(model.DateLayout),
		CourseTypes: stats.CourseTypes,
		Rows:        make([]dto.HourStatRow, 0, len(stats.Rows)),
		GrandTotal:  stats.GrandTotal().InexactFloat64(),
	}
	for _, row := range stats.Rows {
		out := dto.HourStatRow{
			Teacher: row.Teacher,
			Hours:   make(map[string]float64, len(row.Hours)),
			Total:   row.Total.InexactFloat64(),
		}
		for ct, h := range row.Hours {
			out.Hours[ct] = h.InexactFloat64()
		}
		resp.Rows = append(resp.Rows, out)
	}
	return resp
}

// ────────────────────── ExportHours ──────────────────────

func (s *statisticsService) ExportHours(ctx context.Context, req *dto.HourStatisticsRequest) (*bytes.Buffer, string, error) {
	stats, err := s.Hours(ctx, req)
	if err != nil {
		return nil, "", err
	}

	const sheet = "课时统计"
	f := newWorkbook(sheet)
	head := headerStyle(f)
	last := len(stats.CourseTypes) + 2

	header := make([]any, 0, last)
	header = append(header, "老师姓名")
	for _, ct := range stats.CourseTypes {
		if ct == "" {
			ct = "未分类"
		}
		header = append(header, ct)
	}
	header = append(header, "总课时")
	_ = f.SetSheetRow(sheet, cell(1, 1), &header)
	_ = f.SetCellStyle(sheet, cell(1, 1), cell(last, 1), head)
	_ = f.SetColWidth(sheet, "A", "A", 14)

	for i, row := range stats.Rows {
		values := make([]any, 0, last)
		values = append(values, row.Teacher)
		for _, ct := range stats.CourseTypes {
			values = append(values, row.Hours[ct])
		}
		values = append(values, row.Total)
		_ = f.SetSheetRow(sheet, cell(1, i+2), &values)
	}

	totalRow := len(stats.Rows) + 2
	_ = f.SetCellValue(sheet, cell(1, totalRow), "合计")
	_ = f.SetCellValue(sheet, cell(last, totalRow), stats.GrandTotal)
	_ = f.SetCellStyle(sheet, cell(1, totalRow), cell(last, totalRow), head)

	buf, err := writeWorkbook(f)
	if err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", err
	}
	filename := fmt.Sprintf("课时统计_%s_%s.xlsx",
		strings.ReplaceAll(stats.From, "-", ""), strings.ReplaceAll(stats.To, "-", ""))
	return buf, filename, nil
}
