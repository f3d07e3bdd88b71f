package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"moodcal/internal/logger"
	"moodcal/internal/model"
)

// redisIdentityDirectory implements IdentityDirectory on the hosted
// key-value store.
type redisIdentityDirectory struct {
	client *redis.Client
}

// NewIdentityDirectory creates an IdentityDirectory backed by Redis.
func NewIdentityDirectory(client *redis.Client) IdentityDirectory {
	return &redisIdentityDirectory{client: client}
}

// Register writes the mapping normalized(username) -> userID. An existing
// entry is overwritten; uniqueness is the caller's pre-check.
func (d *redisIdentityDirectory) Register(ctx context.Context, username, userID string) error {
	key := usernameKey(Normalize(username))

	if err := d.client.Set(ctx, key, userID, 0).Err(); err != nil {
		logger.Log.Errorf("[IdentityDirectory] Register FAILED: key=%s err=%v", key, err)
		return fmt.Errorf("register username: %w", err)
	}

	logger.Log.Infof("[IdentityDirectory] Register OK: key=%s user=%s", key, userID)
	return nil
}

// Resolve looks up a username and classifies the stored value. A value
// containing '@' is an unrepaired legacy mapping, never an identifier.
func (d *redisIdentityDirectory) Resolve(ctx context.Context, username string) (model.Resolution, error) {
	key := usernameKey(Normalize(username))

	val, err := d.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return model.Resolution{Kind: model.ResolutionAbsent}, nil
	}
	if err != nil {
		logger.Log.Errorf("[IdentityDirectory] Resolve FAILED: key=%s err=%v", key, err)
		return model.Resolution{}, fmt.Errorf("resolve username: %w", err)
	}

	if strings.Contains(val, "@") {
		return model.Resolution{Kind: model.ResolutionLegacyEmail, Email: val}, nil
	}
	return model.Resolution{Kind: model.ResolutionID, UserID: val}, nil
}
