// Package stats derives weekly, monthly and all-time mood summaries from a
// user's full mood collection. Windows are computed from the stored date
// string, not from record timestamps, so a record always counts toward the
// calendar day the user picked.
package stats

import (
	"math"
	"time"

	"moodcal/internal/model"
)

// Summary is one aggregation window. Average is nil when the window holds
// no records; callers must use Count, not a zero average, to tell "no data"
// apart from a neutral mood of exactly 0.
type Summary struct {
	Average *float64 `json:"average"`
	Count   int      `json:"count"`
}

// Overview bundles the three windows served by GET /moods/stats.
type Overview struct {
	Week    Summary `json:"week"`
	Month   Summary `json:"month"`
	AllTime Summary `json:"all_time"`
}

// Summarize computes the three windows relative to now.
func Summarize(col model.MoodCollection, now time.Time) Overview {
	weekStart := WeekStart(now)
	weekEnd := weekStart.AddDate(0, 0, 7)

	var week, month, all []int
	for _, rec := range col {
		day, err := time.ParseInLocation(model.DateLayout, rec.Date, now.Location())
		if err != nil {
			continue
		}
		all = append(all, rec.Value)
		if !day.Before(weekStart) && day.Before(weekEnd) {
			week = append(week, rec.Value)
		}
		if day.Year() == now.Year() && day.Month() == now.Month() {
			month = append(month, rec.Value)
		}
	}

	return Overview{
		Week:    summarize(week),
		Month:   summarize(month),
		AllTime: summarize(all),
	}
}

// WeekStart returns midnight on the Monday of the ISO week containing t.
// Sundays belong to the week that started six days earlier, not to the
// locale's Sunday-first week.
func WeekStart(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// summarize computes the one-decimal arithmetic mean over a window.
func summarize(values []int) Summary {
	if len(values) == 0 {
		return Summary{Count: 0}
	}

	sum := 0
	for _, v := range values {
		sum += v
	}
	avg := math.Round(float64(sum)/float64(len(values))*10) / 10
	return Summary{Average: &avg, Count: len(values)}
}
