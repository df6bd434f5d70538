package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"course-ledger/internal/dto"
	"course-ledger/internal/engine"
	"course-ledger/internal/store"
)

// ── 查询参数错误（各查询服务共用） ──

var (
	ErrInvalidDate = errors.New("日期格式应为 YYYY-MM-DD")
	ErrInvalidTime = errors.New("时间格式应为 HH:mm")
)

// AvailabilityService 空闲教师查询接口
type AvailabilityService interface {
	FreeTeachers(ctx context.Context, req *dto.FreeTeachersRequest) (*dto.FreeTeachersResponse, error)
}

type availabilityService struct {
	store    store.RecordStore
	cache    QueryCache
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewAvailabilityService 创建 AvailabilityService 实例；cache 可为 nil
func NewAvailabilityService(st store.RecordStore, cache QueryCache, cacheTTL time.Duration, logger *zap.Logger) AvailabilityService {
	return &availabilityService{store: st, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

func (s *availabilityService) FreeTeachers(ctx context.Context, req *dto.FreeTeachersRequest) (*dto.FreeTeachersResponse, error) {
	w, err := parseWindow(req)
	if err != nil {
		return nil, err
	}

	snap := s.store.Snapshot()
	key := fmt.Sprintf("free:%s:%d-%d", snap.CacheTag(), w.Start.Unix(), w.End.Unix())
	return cachedQuery(ctx, s.cache, s.cacheTTL, s.logger, key, func() (*dto.FreeTeachersResponse, error) {
		res, err := engine.FreeTeachers(snap.Records, w)
		status := dto.StatusOK
		switch {
		case errors.Is(err, engine.ErrEmptyStore):
			status = dto.StatusEmptyStore
		case err != nil:
			return nil, err
		}
		if res.Skipped > 0 {
			s.logger.Debug("忙闲判断跳过无效记录", zap.Int("skipped", res.Skipped))
		}
		return &dto.FreeTeachersResponse{
			Status:  status,
			Start:   w.Start,
			End:     w.End,
			Free:    res.Free,
			Busy:    res.Busy,
			Skipped: res.Skipped,
		}, nil
	})
}

func parseWindow(req *dto.FreeTeachersRequest) (engine.Window, error) {
	startDate, err := engine.ParseDate(req.Date)
	if err != nil {
		return engine.Window{}, ErrInvalidDate
	}
	endDate := startDate
	if req.EndDate != "" {
		if endDate, err = engine.ParseDate(req.EndDate); err != nil {
			return engine.Window{}, ErrInvalidDate
		}
	}
	startClock, err := engine.ParseClock(req.StartTime)
	if err != nil {
		return engine.Window{}, ErrInvalidTime
	}
	endClock, err := engine.ParseClock(req.EndTime)
	if err != nil {
		return engine.Window{}, ErrInvalidTime
	}
	return engine.NewWindow(startDate, startClock, endDate, endClock)
}
