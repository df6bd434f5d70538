package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"course-ledger/internal/model"
	pkgerrors "course-ledger/pkg/errors"
)

type fakeRepo struct {
	records    []model.CourseRecord
	replaceErr error
	updates    int
}

func (f *fakeRepo) List(_ context.Context) ([]model.CourseRecord, error) {
	return append([]model.CourseRecord(nil), f.records...), nil
}

func (f *fakeRepo) ReplaceAll(_ context.Context, records []model.CourseRecord) error {
	if f.replaceErr != nil {
		return f.replaceErr
	}
	f.records = append([]model.CourseRecord(nil), records...)
	return nil
}

func (f *fakeRepo) Update(_ context.Context, record *model.CourseRecord) error {
	f.updates++
	for i := range f.records {
		if f.records[i].ID == record.ID {
			f.records[i] = *record
		}
	}
	return nil
}

func record(teacher, class string) model.CourseRecord {
	return model.CourseRecord{
		Date:          time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		StartTime:     "08:00",
		EndTime:       "08:45",
		Class:         class,
		Subject:       "数学",
		ActualTeacher: teacher,
		CourseType:    "常规",
		Hours:         decimal.NewFromInt(1),
	}
}

func strPtr(s string) *string { return &s }

func TestStore_EmptyByDefault(t *testing.T) {
	s := New(nil, zap.NewNop())
	snap := s.Snapshot()
	require.NotNil(t, snap)
	assert.Equal(t, uint64(0), snap.Version)
	assert.Equal(t, 0, snap.Len())
}

func TestStore_ReplaceAllAssignsSeqAndIDs(t *testing.T) {
	repo := &fakeRepo{}
	s := New(repo, zap.NewNop())

	input := []model.CourseRecord{record("A", "一班"), record("B", "二班")}
	snap, err := s.ReplaceAll(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, uint64(1), snap.Version)
	require.Len(t, snap.Records, 2)
	assert.Equal(t, 1, snap.Records[1].Seq)
	assert.NotEmpty(t, snap.Records[0].ID)
	assert.Empty(t, input[0].ID, "调用方的切片不被修改")
	assert.Len(t, repo.records, 2)
	assert.Equal(t, snap.Records[0].ID, repo.records[0].ID)
}

func TestStore_ReplaceAllFailureKeepsSnapshot(t *testing.T) {
	repo := &fakeRepo{replaceErr: errors.New("db down")}
	s := New(repo, zap.NewNop())

	_, err := s.ReplaceAll(context.Background(), []model.CourseRecord{record("A", "一班")})
	require.Error(t, err)
	assert.Equal(t, uint64(0), s.Snapshot().Version)
	assert.Equal(t, 0, s.Snapshot().Len())
}

func TestStore_UpdateOne(t *testing.T) {
	repo := &fakeRepo{}
	s := New(repo, zap.NewNop())
	first := record("A", "一班")
	dup := record("A", "一班")
	dup.Reason = "重复"
	_, err := s.ReplaceAll(context.Background(), []model.CourseRecord{first, dup})
	require.NoError(t, err)
	before := s.Snapshot()

	hours := decimal.RequireFromString("1.505")
	updated, err := s.UpdateOne(context.Background(), first.Key(), &RecordPatch{
		StartTime: strPtr("9:00"),
		EndTime:   strPtr("09:45"),
		Hours:     &hours,
		Reason:    strPtr(" 调课 "),
	})
	require.NoError(t, err)
	assert.Equal(t, "09:00", updated.StartTime)
	assert.Equal(t, "调课", updated.Reason)
	assert.Equal(t, "1.51", updated.Hours.String(), "课时按两位小数保存")
	assert.Equal(t, 1, repo.updates)

	after := s.Snapshot()
	assert.Equal(t, before.Version+1, after.Version)
	assert.Equal(t, "09:00", after.Records[0].StartTime)
	assert.Equal(t, "重复", after.Records[1].Reason, "只修改第一条匹配记录")
	assert.Equal(t, "08:00", before.Records[0].StartTime, "旧快照不可变")
}

func TestStore_UpdateOneErrors(t *testing.T) {
	s := New(nil, zap.NewNop())
	_, err := s.ReplaceAll(context.Background(), []model.CourseRecord{record("A", "一班")})
	require.NoError(t, err)

	recA, recB := record("A", "一班"), record("B", "一班")
	_, err = s.UpdateOne(context.Background(), recB.Key(), &RecordPatch{})
	assert.ErrorIs(t, err, pkgerrors.ErrRecordNotFound)

	_, err = s.UpdateOne(context.Background(), recA.Key(), &RecordPatch{StartTime: strPtr("9点")})
	assert.ErrorIs(t, err, ErrInvalidPatch)

	neg := decimal.NewFromInt(-1)
	_, err = s.UpdateOne(context.Background(), recA.Key(), &RecordPatch{Hours: &neg})
	assert.ErrorIs(t, err, ErrInvalidPatch)

	huge := decimal.NewFromInt(1000000)
	_, err = s.UpdateOne(context.Background(), recA.Key(), &RecordPatch{Hours: &huge})
	assert.ErrorIs(t, err, ErrInvalidPatch)
	assert.Equal(t, uint64(1), s.Snapshot().Version)
}

func TestStore_Load(t *testing.T) {
	repo := &fakeRepo{records: []model.CourseRecord{record("A", "一班")}}
	s := New(repo, zap.NewNop())

	snap, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Len())
	assert.Equal(t, uint64(1), snap.Version)
}

func TestStore_ConcurrentReaders(t *testing.T) {
	s := New(nil, zap.NewNop())
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				snap := s.Snapshot()
				_ = snap.Len()
			}
		}()
	}
	for i := 0; i < 10; i++ {
		_, err := s.ReplaceAll(context.Background(), []model.CourseRecord{record("A", "一班")})
		require.NoError(t, err)
	}
	wg.Wait()
	assert.Equal(t, uint64(10), s.Snapshot().Version)
}
