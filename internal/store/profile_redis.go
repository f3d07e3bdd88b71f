package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"moodcal/internal/logger"
	"moodcal/internal/model"
)

// redisProfileStore implements ProfileStore on the hosted key-value store.
type redisProfileStore struct {
	client *redis.Client
}

// NewProfileStore creates a ProfileStore backed by Redis.
func NewProfileStore(client *redis.Client) ProfileStore {
	return &redisProfileStore{client: client}
}

// Save upserts the profile at users/{id}/profile. A malformed id is a
// logged no-op: '.' and '@' are reserved path characters.
func (s *redisProfileStore) Save(ctx context.Context, userID string, p model.Profile) error {
	if !ValidUserID(userID) {
		logger.Log.Warnf("[ProfileStore] Save rejected: malformed user id %q", userID)
		return nil
	}

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}

	if err := s.client.Set(ctx, profileKey(userID), data, 0).Err(); err != nil {
		logger.Log.Errorf("[ProfileStore] Save FAILED: user=%s err=%v", userID, err)
		return fmt.Errorf("save profile: %w", err)
	}

	logger.Log.Infof("[ProfileStore] Save OK: user=%s username=%s", userID, p.Username)
	return nil
}

// Get returns the profile or nil. Malformed id, missing data and backend
// failure all yield nil; only the failure case is logged.
func (s *redisProfileStore) Get(ctx context.Context, userID string) *model.Profile {
	if !ValidUserID(userID) {
		logger.Log.Warnf("[ProfileStore] Get rejected: malformed user id %q", userID)
		return nil
	}

	data, err := s.client.Get(ctx, profileKey(userID)).Bytes()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		logger.Log.Errorf("[ProfileStore] Get FAILED: user=%s err=%v", userID, err)
		return nil
	}

	var p model.Profile
	if err := json.Unmarshal(data, &p); err != nil {
		logger.Log.Errorf("[ProfileStore] Get decode FAILED: user=%s err=%v", userID, err)
		return nil
	}
	return &p
}
