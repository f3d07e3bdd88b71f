package model

import (
	"errors"
	"time"
)

// Mood values come from a seven-step scale centered on neutral.
const (
	MinMoodValue = -3
	MaxMoodValue = 3
)

// DateLayout is the calendar-day key format used across the mood schema.
const DateLayout = "2006-01-02"

// MoodRecord is one user's self-reported mood for one calendar date.
// There is at most one record per user per date; saving again for the
// same date overwrites.
type MoodRecord struct {
	Date      string    `json:"date"`
	Value     int       `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

// MoodCollection is a user's full mood history keyed by date.
type MoodCollection map[string]MoodRecord

var (
	// ErrInvalidDate is returned when a date is not in YYYY-MM-DD form
	ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")

	// ErrInvalidMoodValue is returned when a mood value is outside [-3, 3]
	ErrInvalidMoodValue = errors.New("mood value out of range")
)
