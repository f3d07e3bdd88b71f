package store

import (
	"context"
	"strings"

	"moodcal/internal/model"
)

// The service owns three key families in the hosted key-value store. The
// schema below is the contract: nothing else writes under these prefixes.
//
//	usernames/{normalizedUsername}  -> user id (legacy rows: raw email)
//	users/{userID}/profile          -> profile JSON
//	users/{userID}/moods            -> hash of date -> mood record JSON
func usernameKey(normalized string) string {
	return "usernames/" + normalized
}

func profileKey(userID string) string {
	return "users/" + userID + "/profile"
}

func moodsKey(userID string) string {
	return "users/" + userID + "/moods"
}

// Normalize lowercases and trims a username. Two names that differ only by
// case or surrounding whitespace collide on the same directory entry.
func Normalize(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// ValidUserID rejects identifiers that would escape the hierarchical key
// space. '.' and '@' are reserved; an email must never be usable as a key
// segment.
func ValidUserID(id string) bool {
	return id != "" && !strings.ContainsAny(id, ".@/")
}

// IdentityDirectory maps normalized usernames to stable user identifiers.
// Register performs no uniqueness check itself; callers check-then-write,
// and two concurrent registrations of the same name can race (last write
// wins). That sequence is deliberately not made atomic.
type IdentityDirectory interface {
	Register(ctx context.Context, username, userID string) error
	Resolve(ctx context.Context, username string) (model.Resolution, error)
}

// ProfileStore maps a user identifier to its profile record.
//
// Get collapses "malformed id", "backend failure" and "no such profile"
// into a single nil result. Callers cannot distinguish the three, which is
// the intended contract; failures are logged inside the store.
type ProfileStore interface {
	Save(ctx context.Context, userID string, p model.Profile) error
	Get(ctx context.Context, userID string) *model.Profile
}

// MoodStore maps (user identifier, date) to a mood record. Writes at a key
// are last-write-wins. GetAll applies the same absent/failure collapse as
// ProfileStore.Get and therefore returns no error.
type MoodStore interface {
	Save(ctx context.Context, userID string, rec model.MoodRecord) error
	Delete(ctx context.Context, userID, date string) error
	GetAll(ctx context.Context, userID string) model.MoodCollection
	Subscribe(ctx context.Context, userID string) *MoodSubscription
}

// MoodSubscription is a live view of one user's mood collection. The first
// delivery on C carries the current state (possibly empty) and every later
// delivery a fresh snapshot after a change. Close is idempotent and always
// safe to call, including for subscriptions on malformed user ids.
type MoodSubscription struct {
	C      <-chan model.MoodCollection
	cancel func()
}

// Close tears down the subscription and eventually closes C.
func (s *MoodSubscription) Close() {
	if s.cancel != nil {
		s.cancel()
	}
}

// closedSubscription returns the subscription handed out for malformed user
// ids: one empty delivery, then a closed channel, no-op cancel.
func closedSubscription() *MoodSubscription {
	ch := make(chan model.MoodCollection, 1)
	ch <- model.MoodCollection{}
	close(ch)
	return &MoodSubscription{C: ch, cancel: func() {}}
}
