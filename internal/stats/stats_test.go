package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moodcal/internal/model"
)

func record(date string, value int) model.MoodRecord {
	return model.MoodRecord{Date: date, Value: value, Timestamp: time.Now()}
}

func collection(recs ...model.MoodRecord) model.MoodCollection {
	col := model.MoodCollection{}
	for _, r := range recs {
		col[r.Date] = r
	}
	return col
}

func TestSummarize_EmptyCollection(t *testing.T) {
	now := time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)

	overview := Summarize(model.MoodCollection{}, now)

	for name, s := range map[string]Summary{
		"week":     overview.Week,
		"month":    overview.Month,
		"all_time": overview.AllTime,
	} {
		assert.Equal(t, 0, s.Count, "%s count", name)
		assert.Nil(t, s.Average, "%s average must be nil, not 0", name)
	}
}

func TestSummarize_WeeklyWindowExcludesNextWeek(t *testing.T) {
	// 2024-05-15 is a Wednesday; its ISO week runs Mon 13th .. Sun 19th.
	now := time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)
	col := collection(
		record("2024-05-13", 2),  // Monday, this week
		record("2024-05-15", -2), // Wednesday, this week
		record("2024-05-20", 0),  // next Monday, excluded
	)

	overview := Summarize(col, now)

	require.NotNil(t, overview.Week.Average)
	assert.Equal(t, 2, overview.Week.Count)
	assert.Equal(t, 0.0, *overview.Week.Average)
	assert.Equal(t, 3, overview.AllTime.Count)
}

func TestSummarize_SundayBelongsToPrecedingMonday(t *testing.T) {
	// 2024-05-19 is a Sunday; its week started Monday the 13th.
	now := time.Date(2024, 5, 19, 23, 0, 0, 0, time.UTC)
	col := collection(
		record("2024-05-13", 3), // Monday six days prior, in week
		record("2024-05-19", 1), // Sunday itself, in week
		record("2024-05-20", 1), // next Monday, out
	)

	overview := Summarize(col, now)

	require.NotNil(t, overview.Week.Average)
	assert.Equal(t, 2, overview.Week.Count)
	assert.Equal(t, 2.0, *overview.Week.Average)
}

func TestSummarize_MonthWindow(t *testing.T) {
	now := time.Date(2024, 5, 2, 8, 0, 0, 0, time.UTC)
	col := collection(
		record("2024-05-01", 2),
		record("2024-05-02", 1),
		record("2024-04-30", -3), // previous month
		record("2023-05-10", 3),  // same month, previous year
	)

	overview := Summarize(col, now)

	require.NotNil(t, overview.Month.Average)
	assert.Equal(t, 2, overview.Month.Count)
	assert.Equal(t, 1.5, *overview.Month.Average)
	assert.Equal(t, 4, overview.AllTime.Count)
}

func TestSummarize_AverageRoundsToOneDecimal(t *testing.T) {
	now := time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)
	// 1 + 1 + 2 = 4 over 3 records -> 1.333... -> 1.3
	col := collection(
		record("2024-05-13", 1),
		record("2024-05-14", 1),
		record("2024-05-15", 2),
	)

	overview := Summarize(col, now)

	require.NotNil(t, overview.AllTime.Average)
	assert.Equal(t, 1.3, *overview.AllTime.Average)
}

func TestSummarize_SkipsMalformedDates(t *testing.T) {
	now := time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)
	col := collection(
		record("2024-05-14", 2),
		record("not-a-date", 3),
	)

	overview := Summarize(col, now)

	assert.Equal(t, 1, overview.AllTime.Count)
}

func TestWeekStart(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "monday is its own week start",
			now:  time.Date(2024, 5, 13, 9, 30, 0, 0, time.UTC),
			want: time.Date(2024, 5, 13, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "wednesday rolls back to monday",
			now:  time.Date(2024, 5, 15, 9, 30, 0, 0, time.UTC),
			want: time.Date(2024, 5, 13, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "sunday rolls back six days",
			now:  time.Date(2024, 5, 19, 9, 30, 0, 0, time.UTC),
			want: time.Date(2024, 5, 13, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WeekStart(tt.now))
		})
	}
}
