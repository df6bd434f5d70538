package repository_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"course-ledger/internal/model"
	"course-ledger/internal/repository"
	pkgerrors "course-ledger/pkg/errors"
)

// ═══════════════════════════════════════════════════════════
// Test Setup（内存 SQLite）
// ═══════════════════════════════════════════════════════════

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.CourseRecord{}))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func newRecord(seq int, teacher, hours string) model.CourseRecord {
	r := model.CourseRecord{
		Seq:           seq,
		Date:          time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		StartTime:     "08:00",
		EndTime:       "08:45",
		Class:         "一班",
		Subject:       "数学",
		CourseType:    "常规",
		ActualTeacher: teacher,
		Hours:         decimal.RequireFromString(hours),
	}
	r.EnsureID()
	return r
}

// ═══════════════════════════════════════════════════════════
// CourseRecordRepository
// ═══════════════════════════════════════════════════════════

func TestCourseRecordRepo_ReplaceAllAndList(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewRepository(openTestDB(t)).CourseRecord

	first := []model.CourseRecord{newRecord(1, "B", "2"), newRecord(0, "A", "1.5")}
	require.NoError(t, repo.ReplaceAll(ctx, first))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "A", list[0].ActualTeacher, "按 seq 排序")
	assert.True(t, list[0].Hours.Equal(decimal.RequireFromString("1.5")))
	assert.Equal(t, "2025-04-01", list[0].Date.Format(model.DateLayout))

	require.NoError(t, repo.ReplaceAll(ctx, []model.CourseRecord{newRecord(0, "C", "3")}))
	list, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1, "旧数据被整体替换")
	assert.Equal(t, "C", list[0].ActualTeacher)

	require.NoError(t, repo.ReplaceAll(ctx, nil))
	list, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCourseRecordRepo_Update(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewCourseRecordRepo(openTestDB(t))

	rec := newRecord(0, "A", "1")
	require.NoError(t, repo.ReplaceAll(ctx, []model.CourseRecord{rec}))

	rec.StartTime = "09:00"
	rec.Reason = ""
	rec.Hours = decimal.Zero
	require.NoError(t, repo.Update(ctx, &rec))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "09:00", list[0].StartTime)
	assert.True(t, list[0].Hours.IsZero(), "零值也会被写入")

	missing := newRecord(0, "X", "1")
	assert.ErrorIs(t, repo.Update(ctx, &missing), pkgerrors.ErrRecordNotFound)
}
