package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"course-ledger/internal/dto"
	"course-ledger/internal/engine"
	"course-ledger/internal/model"
	"course-ledger/internal/store"
)

// RecordService 课程记录浏览与编辑接口
type RecordService interface {
	List(ctx context.Context, req *dto.RecordListRequest) ([]dto.CourseRecordResponse, int64, error)
	Update(ctx context.Context, req *dto.UpdateRecordRequest) (*dto.CourseRecordResponse, error)
	Teachers(ctx context.Context) ([]string, error)
	CourseTypes(ctx context.Context) ([]string, error)
}

type recordService struct {
	store  store.RecordStore
	logger *zap.Logger
}

// NewRecordService 创建 RecordService 实例
func NewRecordService(st store.RecordStore, logger *zap.Logger) RecordService {
	return &recordService{store: st, logger: logger}
}

// ────────────────────── List ──────────────────────

func (s *recordService) List(_ context.Context, req *dto.RecordListRequest) ([]dto.CourseRecordResponse, int64, error) {
	match, err := recordMatcher(req)
	if err != nil {
		return nil, 0, err
	}

	// 回写生效的分页参数，供响应分页元数据使用
	req.Page, req.PageSize = req.GetPage(), req.GetPageSize()
	pageSize := req.PageSize

	records := s.store.Snapshot().Records
	offset := req.GetOffset()
	list := make([]dto.CourseRecordResponse, 0, pageSize)
	var total int64
	for i := range records {
		if !match(&records[i]) {
			continue
		}
		if total >= int64(offset) && len(list) < pageSize {
			list = append(list, dto.NewCourseRecordResponse(&records[i]))
		}
		total++
	}
	return list, total, nil
}

func recordMatcher(req *dto.RecordListRequest) (func(*model.CourseRecord) bool, error) {
	var from, to time.Time
	var err error
	if req.From != "" {
		if from, err = engine.ParseDate(req.From); err != nil {
			return nil, ErrInvalidDate
		}
	}
	if req.To != "" {
		if to, err = engine.ParseDate(req.To); err != nil {
			return nil, ErrInvalidDate
		}
	}
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return nil, engine.ErrInvalidRange
	}

	teacher := strings.TrimSpace(req.Teacher)
	keyword := strings.TrimSpace(req.Keyword)
	return func(r *model.CourseRecord) bool {
		d := engine.DateOf(r.Date)
		switch {
		case !from.IsZero() && d.Before(from),
			!to.IsZero() && d.After(to),
			teacher != "" && r.Teacher() != teacher,
			req.Class != "" && r.Class != req.Class,
			req.Subject != "" && r.Subject != req.Subject,
			req.CourseType != "" && r.CourseType != req.CourseType,
			req.Week > 0 && r.Week != req.Week,
			req.Weekday != "" && r.Weekday != req.Weekday:
			return false
		}
		if keyword != "" {
			return strings.Contains(r.ActualTeacher, keyword) ||
				strings.Contains(r.PlannedTeacher, keyword) ||
				strings.Contains(r.Class, keyword) ||
				strings.Contains(r.Subject, keyword)
		}
		return true
	}, nil
}

// ────────────────────── Update ──────────────────────

func (s *recordService) Update(ctx context.Context, req *dto.UpdateRecordRequest) (*dto.CourseRecordResponse, error) {
	patch := &store.RecordPatch{
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		Week:           req.Week,
		Session:        req.Session,
		Period:         req.Period,
		Weekday:        req.Weekday,
		Grade:          req.Grade,
		Class:          req.Class,
		Subject:        req.Subject,
		CourseType:     req.CourseType,
		PlannedTeacher: req.PlannedTeacher,
		ActualTeacher:  req.ActualTeacher,
		Type:           req.Type,
		Reason:         req.Reason,
		Hours:          req.Hours,
	}
	if req.Date != nil {
		d, err := engine.ParseDate(*req.Date)
		if err != nil {
			return nil, ErrInvalidDate
		}
		patch.Date = &d
	}

	key := req.Key.ToModel()
	updated, err := s.store.UpdateOne(ctx, key, patch)
	if err != nil {
		if !errors.Is(err, store.ErrInvalidPatch) {
			s.logger.Warn("更新课程记录失败", zap.String("key", key.String()), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("课程记录已更新", zap.String("id", updated.ID), zap.String("key", updated.Key().String()))
	resp := dto.NewCourseRecordResponse(updated)
	return &resp, nil
}

// ────────────────────── 下拉选项 ──────────────────────

func (s *recordService) Teachers(_ context.Context) ([]string, error) {
	return engine.TeacherUniverse(s.store.Snapshot().Records), nil
}

func (s *recordService) CourseTypes(_ context.Context) ([]string, error) {
	return engine.CourseTypes(s.store.Snapshot().Records), nil
}
