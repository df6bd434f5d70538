package service

import (
	"context"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"course-ledger/config"
	"course-ledger/internal/model"
	"course-ledger/internal/store"
	pkgerrors "course-ledger/pkg/errors"
)

// ── Mock CourseRecordRepository ──

type mockCourseRecordRepo struct {
	records  []model.CourseRecord
	failNext error
}

func newMockCourseRecordRepo() *mockCourseRecordRepo {
	return &mockCourseRecordRepo{}
}

func (m *mockCourseRecordRepo) List(_ context.Context) ([]model.CourseRecord, error) {
	return append([]model.CourseRecord(nil), m.records...), nil
}

func (m *mockCourseRecordRepo) ReplaceAll(_ context.Context, records []model.CourseRecord) error {
	if err := m.failNext; err != nil {
		m.failNext = nil
		return err
	}
	m.records = append([]model.CourseRecord(nil), records...)
	return nil
}

func (m *mockCourseRecordRepo) Update(_ context.Context, record *model.CourseRecord) error {
	for i := range m.records {
		if m.records[i].ID == record.ID {
			m.records[i] = *record
			return nil
		}
	}
	return pkgerrors.ErrRecordNotFound
}

// ── Mock QueryCache（以 JSON 存储，与 Redis 行为一致） ──

type mockCache struct {
	mu   sync.Mutex
	data map[string][]byte
	hits int
	sets int
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string][]byte)}
}

func (m *mockCache) GetJSON(_ context.Context, key string, dst any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.data[key]
	if !ok {
		return false, nil
	}
	m.hits++
	return true, json.Unmarshal(raw, dst)
}

func (m *mockCache) SetJSON(_ context.Context, key string, value any, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = raw
	m.sets++
	return nil
}

// ── 测试辅助 ──

func testConfig() *config.Config {
	return &config.Config{
		Redis: config.RedisConfig{CacheTTL: time.Minute},
		Import: config.ImportConfig{
			MaxRows:    100,
			StagingTTL: 10 * time.Minute,
			Columns:    config.DefaultColumns(),
		},
		Schedule: config.ScheduleConfig{
			PeriodOrder:   []string{"早晨", "上午", "下午", "晚上"},
			WeekdayLabels: []string{"星期一", "星期二", "星期三", "星期四", "星期五", "星期六", "星期日"},
			Timezone:      "UTC",
		},
	}
}

// seededStore 创建已装入记录的存储
func seededStore(records ...model.CourseRecord) (*store.Store, *mockCourseRecordRepo) {
	repo := newMockCourseRecordRepo()
	st := store.New(repo, zap.NewNop())
	if len(records) > 0 {
		if _, err := st.ReplaceAll(context.Background(), records); err != nil {
			panic(err)
		}
	}
	return st, repo
}
