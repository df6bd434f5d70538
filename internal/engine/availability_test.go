package engine

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"course-ledger/internal/model"
)

// ════════════════════════════════════════════════════════════
// 忙闲查询
// ════════════════════════════════════════════════════════════

func TestFreeTeachers_OverlapMakesBusy(t *testing.T) {
	records := []model.CourseRecord{rec("A", "2025-04-01", "09:00", "10:00")}

	res, err := FreeTeachers(records, window("2025-04-01", "09:30", "09:45"))
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, res.Busy)
	assert.Empty(t, res.Free)
}

func TestFreeTeachers_HalfOpenBoundary(t *testing.T) {
	records := []model.CourseRecord{rec("A", "2025-04-01", "09:00", "10:00")}

	res, err := FreeTeachers(records, window("2025-04-01", "10:00", "11:00"))
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, res.Free)
	assert.Empty(t, res.Busy)
}

func TestFreeTeachers_OtherDateIgnored(t *testing.T) {
	records := []model.CourseRecord{
		rec("A", "2025-04-02", "09:00", "10:00"),
		rec("B", "2025-04-01", "09:00", "10:00"),
	}

	res, err := FreeTeachers(records, window("2025-04-01", "09:00", "09:30"))
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, res.Free)
	assert.Equal(t, []string{"B"}, res.Busy)
}

func TestFreeTeachers_InvalidRecordsSkipped(t *testing.T) {
	records := []model.CourseRecord{
		rec("A", "2025-04-01", "10:00", "09:00"),
		rec("B", "2025-04-01", "", ""),
		rec("  ", "2025-04-01", "09:00", "10:00"),
	}

	res, err := FreeTeachers(records, window("2025-04-01", "08:00", "12:00"))
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, res.Free, "无效记录的教师仍属于教师全集")
	assert.Empty(t, res.Busy)
	assert.Equal(t, 2, res.Skipped)
}

func TestFreeTeachers_CrossMidnightWindow(t *testing.T) {
	records := []model.CourseRecord{
		rec("A", "2025-04-01", "22:30", "23:30"),
		rec("B", "2025-04-02", "01:00", "02:00"),
		rec("C", "2025-04-02", "03:00", "04:00"),
	}
	w, err := NewWindow(day("2025-04-01"), clock("23:00"), day("2025-04-02"), clock("02:30"))
	require.NoError(t, err)

	res, err := FreeTeachers(records, w)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, res.Busy)
	assert.Equal(t, []string{"C"}, res.Free)
}

func TestFreeTeachers_Errors(t *testing.T) {
	_, err := FreeTeachers(nil, Window{Start: day("2025-04-01"), End: day("2025-04-01")})
	assert.ErrorIs(t, err, ErrInvalidWindow)

	res, err := FreeTeachers(nil, window("2025-04-01", "09:00", "10:00"))
	assert.ErrorIs(t, err, ErrEmptyStore)
	assert.Empty(t, res.Free)
	assert.Empty(t, res.Busy)
}

func TestFreeTeachers_PartitionAndOrderIndependence(t *testing.T) {
	teachers := []string{"张三", "李四", "王五", "赵六", "钱七"}
	starts := []string{"08:00", "09:00", "10:00", "13:00", "14:00", "15:00"}
	rng := rand.New(rand.NewSource(42))

	var records []model.CourseRecord
	for i := 0; i < 60; i++ {
		s := clock(starts[rng.Intn(len(starts))])
		e := Clock{Hour: s.Hour, Minute: 45}
		date := []string{"2025-04-01", "2025-04-02"}[rng.Intn(2)]
		records = append(records, rec(teachers[rng.Intn(len(teachers))], date, s.String(), e.String()))
	}
	w := window("2025-04-01", "09:30", "13:30")

	first, err := FreeTeachers(records, w)
	require.NoError(t, err)

	universe := TeacherUniverse(records)
	union := append(append([]string{}, first.Free...), first.Busy...)
	assert.ElementsMatch(t, universe, union)
	for _, f := range first.Free {
		assert.NotContains(t, first.Busy, f)
	}

	for i := 0; i < 5; i++ {
		shuffled := append([]model.CourseRecord(nil), records...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		again, err := FreeTeachers(shuffled, w)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
