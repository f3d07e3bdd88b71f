package service

import (
	"context"
	"time"

	"moodcal/internal/model"
	"moodcal/internal/stats"
	"moodcal/internal/store"
)

// MoodService validates mood input and delegates to the mood store.
type MoodService struct {
	moods store.MoodStore
}

func NewMoodService(moods store.MoodStore) *MoodService {
	return &MoodService{moods: moods}
}

// Save upserts the mood for one calendar date. The write stamps the record
// with the current instant; saving the same date again overwrites.
func (s *MoodService) Save(ctx context.Context, userID, date string, value int) (*model.MoodRecord, error) {
	if _, err := time.Parse(model.DateLayout, date); err != nil {
		return nil, model.ErrInvalidDate
	}
	if value < model.MinMoodValue || value > model.MaxMoodValue {
		return nil, model.ErrInvalidMoodValue
	}

	rec := model.MoodRecord{
		Date:      date,
		Value:     value,
		Timestamp: time.Now().UTC(),
	}
	if err := s.moods.Save(ctx, userID, rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Delete removes the mood for one calendar date; deleting an absent date is
// a no-op.
func (s *MoodService) Delete(ctx context.Context, userID, date string) error {
	if _, err := time.Parse(model.DateLayout, date); err != nil {
		return model.ErrInvalidDate
	}
	return s.moods.Delete(ctx, userID, date)
}

// GetAll returns the user's full mood collection.
func (s *MoodService) GetAll(ctx context.Context, userID string) model.MoodCollection {
	return s.moods.GetAll(ctx, userID)
}

// Summaries computes the week/month/all-time overview from the current
// collection.
func (s *MoodService) Summaries(ctx context.Context, userID string) stats.Overview {
	return stats.Summarize(s.moods.GetAll(ctx, userID), time.Now())
}

// SummariesFor aggregates an already-fetched collection, used when the
// caller also needs the raw records.
func (s *MoodService) SummariesFor(col model.MoodCollection) stats.Overview {
	return stats.Summarize(col, time.Now())
}

// Subscribe opens a live view of the user's collection.
func (s *MoodService) Subscribe(ctx context.Context, userID string) *store.MoodSubscription {
	return s.moods.Subscribe(ctx, userID)
}
