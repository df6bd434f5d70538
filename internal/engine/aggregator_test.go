package engine

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"course-ledger/internal/model"
)

// ════════════════════════════════════════════════════════════
// 课时统计
// ════════════════════════════════════════════════════════════

func TestAggregate_PerCourseType(t *testing.T) {
	records := []model.CourseRecord{
		hoursRec("A", "2025-04-01", "Regular", "2"),
		hoursRec("A", "2025-04-01", "Makeup", "1"),
	}

	stats, err := Aggregate(records, day("2025-04-01"), day("2025-04-01"), AllTeachers())
	require.NoError(t, err)
	assert.Equal(t, []string{"Makeup", "Regular"}, stats.CourseTypes)
	require.Len(t, stats.Rows, 1)

	row := stats.Rows[0]
	assert.Equal(t, "A", row.Teacher)
	assert.True(t, row.Hours["Regular"].Equal(decimal.NewFromInt(2)))
	assert.True(t, row.Hours["Makeup"].Equal(decimal.NewFromInt(1)))
	assert.True(t, row.Total.Equal(decimal.NewFromInt(3)))
}

func TestAggregate_RangeAndFilter(t *testing.T) {
	records := []model.CourseRecord{
		hoursRec("A", "2025-03-31", "常规", "5"),
		hoursRec("A", "2025-04-01", "常规", "1.5"),
		hoursRec("B", "2025-04-07", "代课", "2"),
		hoursRec("C", "2025-04-03", "补课", "1"),
		hoursRec("", "2025-04-03", "补课", "9"),
		hoursRec("B", "2025-04-08", "常规", "4"),
	}

	stats, err := Aggregate(records, day("2025-04-01"), day("2025-04-07"), OnlyTeachers("A", "B"))
	require.NoError(t, err)
	assert.Equal(t, []string{"代课", "常规"}, stats.CourseTypes, "课程类型只取筛选后的记录")
	require.Len(t, stats.Rows, 2)

	assert.Equal(t, "A", stats.Rows[0].Teacher)
	assert.True(t, stats.Rows[0].Hours["常规"].Equal(decimal.RequireFromString("1.5")))
	assert.True(t, stats.Rows[0].Hours["代课"].IsZero(), "缺失的类型补零")
	assert.Equal(t, "B", stats.Rows[1].Teacher)
	assert.True(t, stats.Rows[1].Total.Equal(decimal.NewFromInt(2)))
	assert.True(t, stats.GrandTotal().Equal(decimal.RequireFromString("3.5")))
}

func TestAggregate_Errors(t *testing.T) {
	records := []model.CourseRecord{hoursRec("A", "2025-04-01", "常规", "1")}

	_, err := Aggregate(records, day("2025-04-02"), day("2025-04-01"), AllTeachers())
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = Aggregate(records, day("2025-04-01"), day("2025-04-02"), OnlyTeachers())
	assert.ErrorIs(t, err, ErrEmptyTeacherFilter)

	_, err = Aggregate(records, day("2025-04-01"), day("2025-04-02"), OnlyTeachers(" "))
	assert.ErrorIs(t, err, ErrEmptyTeacherFilter)

	stats, err := Aggregate(nil, day("2025-04-01"), day("2025-04-02"), AllTeachers())
	assert.ErrorIs(t, err, ErrEmptyStore)
	assert.Empty(t, stats.Rows)
}

func TestAggregate_TotalsAndShuffleInvariance(t *testing.T) {
	teachers := []string{"A", "B", "C"}
	types := []string{"常规", "代课", "补课"}
	hours := []string{"0.1", "0.2", "0.7", "1", "1.5", "2.25"}
	rng := rand.New(rand.NewSource(7))

	var records []model.CourseRecord
	want := decimal.Zero
	for i := 0; i < 200; i++ {
		h := hours[rng.Intn(len(hours))]
		want = want.Add(decimal.RequireFromString(h))
		records = append(records, hoursRec(teachers[rng.Intn(3)], "2025-04-01", types[rng.Intn(3)], h))
	}

	stats, err := Aggregate(records, day("2025-04-01"), day("2025-04-01"), AllTeachers())
	require.NoError(t, err)
	assert.True(t, stats.GrandTotal().Equal(want))
	for _, row := range stats.Rows {
		sum := decimal.Zero
		for _, ct := range stats.CourseTypes {
			sum = sum.Add(row.Hours[ct])
		}
		assert.True(t, sum.Equal(row.Total), "行合计应等于各类型之和")
	}

	rng.Shuffle(len(records), func(a, b int) { records[a], records[b] = records[b], records[a] })
	again, err := Aggregate(records, day("2025-04-01"), day("2025-04-01"), AllTeachers())
	require.NoError(t, err)
	require.Equal(t, len(stats.Rows), len(again.Rows))
	for i := range stats.Rows {
		assert.True(t, stats.Rows[i].Total.Equal(again.Rows[i].Total))
		for _, ct := range stats.CourseTypes {
			assert.True(t, stats.Rows[i].Hours[ct].Equal(again.Rows[i].Hours[ct]))
		}
	}
}
