package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"course-ledger/config"
	"course-ledger/internal/dto"
	"course-ledger/internal/engine"
	"course-ledger/internal/model"
	"course-ledger/internal/store"
)

// ── 导入模块业务错误 ──

var (
	ErrImportBadFile        = errors.New("无法解析 Excel 文件")
	ErrImportNoData         = errors.New("Excel 文件无数据行（第一行为表头）")
	ErrImportTooManyRows    = errors.New("数据行数超过上限")
	ErrImportBadHeader      = errors.New("Excel 表头缺少必要列")
	ErrImportSheetNotFound  = errors.New("指定的工作表不存在")
	ErrImportNotFound       = errors.New("导入批次不存在或已过期，请重新上传")
	ErrImportNoValidRecords = errors.New("没有可导入的有效记录")
)

// previewLimit 预览返回的记录条数
const previewLimit = 50

// ImportService 课程数据导入接口
//
// 设计说明：
//   - 上传后先暂存并返回预览（含逐行错误与警告），确认后才整体替换现有数据
//   - 暂存批次保存在进程内，超过 staging_ttl 自动失效
//   - 日期无法解析的行被跳过，不影响同批其他行
type ImportService interface {
	Stage(ctx context.Context, fileName string, reader io.Reader) (*dto.ImportPreviewResponse, error)
	Get(ctx context.Context, id string) (*dto.ImportPreviewResponse, error)
	Confirm(ctx context.Context, id string) (*dto.ConfirmImportResponse, error)
	// Template 生成与当前列映射一致的导入模版
	Template(ctx context.Context) (*bytes.Buffer, string, error)
}

type stagedImport struct {
	preview *dto.ImportPreviewResponse
	records []model.CourseRecord
}

type importService struct {
	store   store.RecordStore
	cfg     *config.ImportConfig
	mapping engine.FieldMapping
	logger  *zap.Logger
	now     func() time.Time

	mu     sync.Mutex
	staged map[string]*stagedImport
}

// NewImportService 创建 ImportService 实例
func NewImportService(st store.RecordStore, cfg *config.ImportConfig, logger *zap.Logger) ImportService {
	mapping := engine.FieldMapping{}
	for field, header := range config.DefaultColumns() {
		mapping[field] = header
	}
	for field, header := range cfg.Columns {
		if strings.TrimSpace(header) != "" {
			mapping[field] = strings.TrimSpace(header)
		}
	}
	return &importService{
		store:   st,
		cfg:     cfg,
		mapping: mapping,
		logger:  logger,
		now:     time.Now,
		staged:  make(map[string]*stagedImport),
	}
}

// ────────────────────── Stage ──────────────────────

func (s *importService) Stage(_ context.Context, fileName string, reader io.Reader) (*dto.ImportPreviewResponse, error) {
	rows, err := s.readSheet(reader)
	if err != nil {
		return nil, err
	}

	res := engine.NormalizeRows(rows, s.mapping)
	for _, rowErr := range res.Errors {
		s.logger.Warn("导入行解析失败",
			zap.String("file", fileName),
			zap.Int("row", rowErr.Row),
			zap.String("field", rowErr.Field),
			zap.String("reason", rowErr.Reason),
		)
	}

	now := s.now()
	preview := &dto.ImportPreviewResponse{
		ID:        uuid.NewString(),
		FileName:  fileName,
		Total:     len(rows),
		Valid:     len(res.Records),
		Failed:    len(res.Errors),
		ExpiresAt: now.Add(s.ttl()),
		Errors:    make([]dto.RowIssue, 0, len(res.Errors)),
		Warnings:  make([]dto.RowIssue, 0, len(res.Warnings)),
		Preview:   make([]dto.CourseRecordResponse, 0, min(len(res.Records), previewLimit)),
	}
	for _, e := range res.Errors {
		preview.Errors = append(preview.Errors, dto.RowIssue{Row: e.Row, Field: e.Field, Reason: e.Reason})
	}
	for _, w := range res.Warnings {
		preview.Warnings = append(preview.Warnings, dto.RowIssue{Row: w.Row, Field: w.Field, Reason: w.Reason})
	}
	for i := 0; i < len(res.Records) && i < previewLimit; i++ {
		preview.Preview = append(preview.Preview, dto.NewCourseRecordResponse(&res.Records[i]))
	}

	s.mu.Lock()
	s.sweepLocked(now)
	s.staged[preview.ID] = &stagedImport{preview: preview, records: res.Records}
	s.mu.Unlock()

	s.logger.Info("导入已暂存",
		zap.String("import_id", preview.ID),
		zap.String("file", fileName),
		zap.Int("rows", preview.Total),
		zap.Int("valid", preview.Valid),
		zap.Int("failed", preview.Failed),
		zap.Int("warnings", len(preview.Warnings)),
	)
	return preview, nil
}

// ────────────────────── Get / Confirm ──────────────────────

func (s *importService) Get(_ context.Context, id string) (*dto.ImportPreviewResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked(s.now())

	staged, ok := s.staged[id]
	if !ok {
		return nil, ErrImportNotFound
	}
	return staged.preview, nil
}

func (s *importService) Confirm(ctx context.Context, id string) (*dto.ConfirmImportResponse, error) {
	s.mu.Lock()
	s.sweepLocked(s.now())
	staged, ok := s.staged[id]
	if ok && len(staged.records) > 0 {
		delete(s.staged, id)
	}
	s.mu.Unlock()

	if !ok {
		return nil, ErrImportNotFound
	}
	if len(staged.records) == 0 {
		return nil, ErrImportNoValidRecords
	}

	snap, err := s.store.ReplaceAll(ctx, staged.records)
	if err != nil {
		// 持久化失败时放回暂存区，允许重试
		s.mu.Lock()
		s.staged[id] = staged
		s.mu.Unlock()
		s.logger.Error("确认导入失败", zap.String("import_id", id), zap.Error(err))
		return nil, err
	}

	s.logger.Info("导入已确认",
		zap.String("import_id", id),
		zap.Int("records", snap.Len()),
		zap.Uint64("version", snap.Version),
	)
	return &dto.ConfirmImportResponse{Imported: snap.Len(), Version: snap.Version}, nil
}

func (s *importService) ttl() time.Duration {
	if s.cfg.StagingTTL > 0 {
		return s.cfg.StagingTTL
	}
	return 30 * time.Minute
}

// sweepLocked 清理过期批次，调用方须持有 mu
func (s *importService) sweepLocked(now time.Time) {
	for id, staged := range s.staged {
		if now.After(staged.preview.ExpiresAt) {
			delete(s.staged, id)
		}
	}
}

// ────────────────────── 读取工作表 ──────────────────────

// readSheet 读取表头与数据行；数值单元格（含日期序列号）保留为 float64，其余为文本
func (s *importService) readSheet(reader io.Reader) ([]engine.SourceRow, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportBadFile, err)
	}
	defer f.Close()

	sheet := s.cfg.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	} else if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrImportSheetNotFound, sheet)
	}

	excelRows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("读取工作表失败: %w", err)
	}
	if len(excelRows) < 2 {
		return nil, ErrImportNoData
	}

	header := make([]string, len(excelRows[0]))
	for i, h := range excelRows[0] {
		header[i] = strings.TrimSpace(h)
	}
	if missing := s.mapping.Missing(header, engine.RequiredFields...); len(missing) > 0 {
		names := make([]string, 0, len(missing))
		for _, field := range missing {
			names = append(names, s.mapping.Header(field))
		}
		return nil, fmt.Errorf("%w: %s", ErrImportBadHeader, strings.Join(names, "/"))
	}

	rows := make([]engine.SourceRow, 0, len(excelRows)-1)
	for i := 1; i < len(excelRows); i++ {
		line := i + 1
		values := engine.RawRow{}
		for col, raw := range excelRows[i] {
			if col >= len(header) || header[col] == "" || strings.TrimSpace(raw) == "" {
				continue
			}
			values[header[col]] = s.cellValue(f, sheet, cell(col+1, line), raw)
		}
		// 跳过全空行
		if len(values) == 0 {
			continue
		}
		rows = append(rows, engine.SourceRow{Line: line, Values: values})
		if len(rows) > s.cfg.MaxRows {
			return nil, fmt.Errorf("%w %d 行", ErrImportTooManyRows, s.cfg.MaxRows)
		}
	}
	if len(rows) == 0 {
		return nil, ErrImportNoData
	}
	return rows, nil
}

// cellValue 数值类单元格转为 float64，文本类保持原样
func (s *importService) cellValue(f *excelize.File, sheet, axis, raw string) any {
	typ, err := f.GetCellType(sheet, axis)
	if err != nil {
		return raw
	}
	switch typ {
	case excelize.CellTypeUnset, excelize.CellTypeNumber, excelize.CellTypeDate, excelize.CellTypeFormula:
		if v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
			return v
		}
	}
	return raw
}

// ────────────────────── Template ──────────────────────

func (s *importService) Template(_ context.Context) (*bytes.Buffer, string, error) {
	const sheet = "课程数据"
	f := newWorkbook(sheet)

	header := make([]any, 0, len(engine.Fields))
	for _, field := range engine.Fields {
		header = append(header, s.mapping.Header(field))
	}
	_ = f.SetSheetRow(sheet, cell(1, 1), &header)
	_ = f.SetCellStyle(sheet, cell(1, 1), cell(len(header), 1), headerStyle(f))
	_ = f.SetColWidth(sheet, "A", cellColumn(len(header)), 14)

	example := map[string]any{
		engine.FieldDate:           "2025-03-03",
		engine.FieldStartTime:      "08:00",
		engine.FieldEndTime:        "08:45",
		engine.FieldWeek:           1,
		engine.FieldWeekday:        "星期一",
		engine.FieldSession:        1,
		engine.FieldPeriod:         "上午",
		engine.FieldGrade:          "高一",
		engine.FieldClass:          "高一(1)班",
		engine.FieldSubject:        "数学",
		engine.FieldCourseType:     "常规",
		engine.FieldHours:          1,
		engine.FieldPlannedTeacher: "张三",
		engine.FieldActualTeacher:  "张三",
	}
	row := make([]any, 0, len(engine.Fields))
	for _, field := range engine.Fields {
		row = append(row, example[field])
	}
	_ = f.SetSheetRow(sheet, cell(1, 2), &row)

	buf, err := writeWorkbook(f)
	if err != nil {
		s.logger.Error("生成导入模版失败", zap.Error(err))
		return nil, "", err
	}
	return buf, "课程导入模版.xlsx", nil
}

func cellColumn(col int) string {
	name, _ := excelize.ColumnNumberToName(col)
	return name
}
