package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"moodcal/internal/logger"
	"moodcal/internal/model"
)

// redisMoodStore implements MoodStore on a Redis hash per user plus a
// pub/sub channel carrying change notifications for live subscriptions.
// The hash field is the date, so (user, date) stays a point key and saving
// twice for the same date overwrites.
type redisMoodStore struct {
	client *redis.Client
}

// NewMoodStore creates a MoodStore backed by Redis.
func NewMoodStore(client *redis.Client) MoodStore {
	return &redisMoodStore{client: client}
}

// Save upserts the record at (userID, rec.Date) and notifies subscribers.
// A malformed user id is a logged no-op.
func (s *redisMoodStore) Save(ctx context.Context, userID string, rec model.MoodRecord) error {
	if !ValidUserID(userID) {
		logger.Log.Warnf("[MoodStore] Save rejected: malformed user id %q", userID)
		return nil
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal mood record: %w", err)
	}

	key := moodsKey(userID)
	if err := s.client.HSet(ctx, key, rec.Date, data).Err(); err != nil {
		logger.Log.Errorf("[MoodStore] Save FAILED: user=%s date=%s err=%v", userID, rec.Date, err)
		return fmt.Errorf("save mood: %w", err)
	}

	s.publish(ctx, key, rec.Date)
	logger.Log.Infof("[MoodStore] Save OK: user=%s date=%s value=%d", userID, rec.Date, rec.Value)
	return nil
}

// Delete removes the record at (userID, date). Deleting a date that holds
// no record is a no-op, as is a malformed user id.
func (s *redisMoodStore) Delete(ctx context.Context, userID, date string) error {
	if !ValidUserID(userID) {
		logger.Log.Warnf("[MoodStore] Delete rejected: malformed user id %q", userID)
		return nil
	}

	key := moodsKey(userID)
	removed, err := s.client.HDel(ctx, key, date).Result()
	if err != nil {
		logger.Log.Errorf("[MoodStore] Delete FAILED: user=%s date=%s err=%v", userID, date, err)
		return fmt.Errorf("delete mood: %w", err)
	}

	if removed > 0 {
		s.publish(ctx, key, date)
	}
	logger.Log.Infof("[MoodStore] Delete OK: user=%s date=%s removed=%d", userID, date, removed)
	return nil
}

// GetAll is a point-in-time read of the full collection. Malformed id and
// backend failure both degrade to an empty collection.
func (s *redisMoodStore) GetAll(ctx context.Context, userID string) model.MoodCollection {
	col := model.MoodCollection{}
	if !ValidUserID(userID) {
		logger.Log.Warnf("[MoodStore] GetAll rejected: malformed user id %q", userID)
		return col
	}

	fields, err := s.client.HGetAll(ctx, moodsKey(userID)).Result()
	if err != nil {
		logger.Log.Errorf("[MoodStore] GetAll FAILED: user=%s err=%v", userID, err)
		return col
	}

	for date, raw := range fields {
		var rec model.MoodRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			logger.Log.Errorf("[MoodStore] GetAll decode FAILED: user=%s date=%s err=%v", userID, date, err)
			continue
		}
		col[date] = rec
	}
	return col
}

// Subscribe registers a live listener on the user's mood collection. The
// current state is delivered first; every subsequent change triggers a
// fresh snapshot. The returned handle must be closed by the caller.
func (s *redisMoodStore) Subscribe(ctx context.Context, userID string) *MoodSubscription {
	if !ValidUserID(userID) {
		logger.Log.Warnf("[MoodStore] Subscribe rejected: malformed user id %q", userID)
		return closedSubscription()
	}

	subCtx, cancel := context.WithCancel(ctx)
	pubsub := s.client.Subscribe(subCtx, moodsKey(userID))
	out := make(chan model.MoodCollection, 1)

	go func() {
		defer close(out)

		// Immediate first delivery with the current collection.
		select {
		case out <- s.GetAll(subCtx, userID):
		case <-subCtx.Done():
			return
		}

		msgs := pubsub.Channel()
		for {
			select {
			case <-subCtx.Done():
				return
			case _, ok := <-msgs:
				if !ok {
					return
				}
				select {
				case out <- s.GetAll(subCtx, userID):
				case <-subCtx.Done():
					return
				}
			}
		}
	}()

	logger.Log.Infof("[MoodStore] Subscribe OK: user=%s", userID)
	return &MoodSubscription{
		C: out,
		cancel: func() {
			cancel()
			_ = pubsub.Close()
		},
	}
}

// publish sends a change notification. Delivery is best effort: a missed
// notification only delays the next snapshot, it cannot lose data.
func (s *redisMoodStore) publish(ctx context.Context, key, date string) {
	if err := s.client.Publish(ctx, key, date).Err(); err != nil {
		logger.Log.Errorf("[MoodStore] publish FAILED: key=%s err=%v", key, err)
	}
}
