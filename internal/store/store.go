package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"course-ledger/internal/model"
	pkgerrors "course-ledger/pkg/errors"
)

// ErrInvalidPatch 修改内容不合法
var ErrInvalidPatch = errors.New("修改内容不合法")

// Snapshot 某一时刻的完整记录集，发布后只读
type Snapshot struct {
	Version  uint64
	Records  []model.CourseRecord
	LoadedAt time.Time
}

// Len 记录数
func (s *Snapshot) Len() int { return len(s.Records) }

// CacheTag 快照标识，用作查询缓存键的一部分；进程重启后版本号会重新计数，故带上发布时间
func (s *Snapshot) CacheTag() string {
	return fmt.Sprintf("%d.%d", s.Version, s.LoadedAt.UnixNano())
}

// Repository 记录的持久化端
type Repository interface {
	List(ctx context.Context) ([]model.CourseRecord, error)
	ReplaceAll(ctx context.Context, records []model.CourseRecord) error
	Update(ctx context.Context, record *model.CourseRecord) error
}

// RecordStore 查询引擎读取、导入与编辑写入的记录存储
type RecordStore interface {
	Snapshot() *Snapshot
	Load(ctx context.Context) (*Snapshot, error)
	ReplaceAll(ctx context.Context, records []model.CourseRecord) (*Snapshot, error)
	UpdateOne(ctx context.Context, key model.RecordKey, patch *RecordPatch) (*model.CourseRecord, error)
}

// Store 以原子指针发布快照：读不加锁，写串行化且先持久化再切换
type Store struct {
	repo    Repository // nil 时为纯内存存储
	logger  *zap.Logger
	current atomic.Pointer[Snapshot]
	mu      sync.Mutex
}

// New 创建存储；repo 可为 nil
func New(repo Repository, logger *zap.Logger) *Store {
	s := &Store{repo: repo, logger: logger}
	s.current.Store(&Snapshot{Records: []model.CourseRecord{}, LoadedAt: time.Now()})
	return s
}

// Snapshot 当前快照，永不为 nil
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

// Load 从持久化端重新加载全部记录
func (s *Store) Load(ctx context.Context) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.repo == nil {
		return s.current.Load(), nil
	}
	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("加载课程记录失败: %w", err)
	}
	return s.publish(records, "load"), nil
}

// ReplaceAll 用新的记录集整体替换；Seq 按传入顺序重新编号
func (s *Store) ReplaceAll(ctx context.Context, records []model.CourseRecord) (*Snapshot, error) {
	next := make([]model.CourseRecord, len(records))
	copy(next, records)
	for i := range next {
		next[i].Seq = i
		next[i].EnsureID()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.repo != nil {
		if err := s.repo.ReplaceAll(ctx, next); err != nil {
			return nil, fmt.Errorf("替换课程记录失败: %w", err)
		}
	}
	return s.publish(next, "replace"), nil
}

// UpdateOne 按派生键修改规范顺序中第一条匹配的记录
func (s *Store) UpdateOne(ctx context.Context, key model.RecordKey, patch *RecordPatch) (*model.CourseRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.current.Load()
	idx := -1
	for i := range cur.Records {
		if cur.Records[i].Key() == key {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, pkgerrors.ErrRecordNotFound
	}

	updated := cur.Records[idx]
	if patch != nil {
		if err := patch.Apply(&updated); err != nil {
			return nil, err
		}
	}

	if s.repo != nil {
		if err := s.repo.Update(ctx, &updated); err != nil {
			return nil, fmt.Errorf("更新课程记录失败: %w", err)
		}
	}

	next := make([]model.CourseRecord, len(cur.Records))
	copy(next, cur.Records)
	next[idx] = updated
	s.publish(next, "update")
	return &updated, nil
}

// publish 调用方须持有 mu
func (s *Store) publish(records []model.CourseRecord, reason string) *Snapshot {
	prev := s.current.Load()
	snap := &Snapshot{Version: prev.Version + 1, Records: records, LoadedAt: time.Now()}
	s.current.Store(snap)
	s.logger.Info("课程快照已切换",
		zap.String("reason", reason),
		zap.Uint64("version", snap.Version),
		zap.Int("records", len(records)),
	)
	return snap
}
