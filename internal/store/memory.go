package store

import (
	"context"
	"strings"
	"sync"

	"moodcal/internal/logger"
	"moodcal/internal/model"
)

// MemoryStore is an in-memory implementation of IdentityDirectory,
// ProfileStore and MoodStore with the same schema contract and subscription
// behavior as the Redis versions. It backs unit tests and local development
// without a Redis instance.
type MemoryStore struct {
	mu        sync.Mutex
	usernames map[string]string
	profiles  map[string]model.Profile
	moods     map[string]model.MoodCollection

	nextSubID int
	subs      map[string]map[int]chan model.MoodCollection
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		usernames: make(map[string]string),
		profiles:  make(map[string]model.Profile),
		moods:     make(map[string]model.MoodCollection),
		subs:      make(map[string]map[int]chan model.MoodCollection),
	}
}

// Register writes the username mapping, overwriting any existing entry.
func (m *MemoryStore) Register(ctx context.Context, username, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.usernames[Normalize(username)] = userID
	return nil
}

// SeedLegacyMapping installs a pre-migration entry whose value is a raw
// email address. Used by tests and by migration tooling.
func (m *MemoryStore) SeedLegacyMapping(username, email string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.usernames[Normalize(username)] = email
}

// Resolve looks up a username and classifies the stored value.
func (m *MemoryStore) Resolve(ctx context.Context, username string) (model.Resolution, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	val, ok := m.usernames[Normalize(username)]
	if !ok {
		return model.Resolution{Kind: model.ResolutionAbsent}, nil
	}
	if strings.Contains(val, "@") {
		return model.Resolution{Kind: model.ResolutionLegacyEmail, Email: val}, nil
	}
	return model.Resolution{Kind: model.ResolutionID, UserID: val}, nil
}

// Save upserts a profile; malformed ids are rejected as logged no-ops.
func (m *MemoryStore) Save(ctx context.Context, userID string, p model.Profile) error {
	if !ValidUserID(userID) {
		logger.Log.Warnf("[MemoryStore] profile save rejected: malformed user id %q", userID)
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[userID] = p
	return nil
}

// Get returns the profile or nil for malformed ids and missing data.
func (m *MemoryStore) Get(ctx context.Context, userID string) *model.Profile {
	if !ValidUserID(userID) {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[userID]
	if !ok {
		return nil
	}
	return &p
}

// SaveMood upserts the record at (userID, rec.Date).
func (m *MemoryStore) SaveMood(ctx context.Context, userID string, rec model.MoodRecord) error {
	if !ValidUserID(userID) {
		logger.Log.Warnf("[MemoryStore] mood save rejected: malformed user id %q", userID)
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	col, ok := m.moods[userID]
	if !ok {
		col = model.MoodCollection{}
		m.moods[userID] = col
	}
	col[rec.Date] = rec
	m.notifyLocked(userID)
	return nil
}

// DeleteMood removes the record at (userID, date) if present.
func (m *MemoryStore) DeleteMood(ctx context.Context, userID, date string) error {
	if !ValidUserID(userID) {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	col, ok := m.moods[userID]
	if !ok {
		return nil
	}
	if _, exists := col[date]; !exists {
		return nil
	}
	delete(col, date)
	m.notifyLocked(userID)
	return nil
}

// GetAllMoods returns a copy of the user's collection; empty for malformed
// ids and unknown users.
func (m *MemoryStore) GetAllMoods(ctx context.Context, userID string) model.MoodCollection {
	out := model.MoodCollection{}
	if !ValidUserID(userID) {
		return out
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for date, rec := range m.moods[userID] {
		out[date] = rec
	}
	return out
}

// SubscribeMoods registers a live listener with an immediate first delivery.
func (m *MemoryStore) SubscribeMoods(ctx context.Context, userID string) *MoodSubscription {
	if !ValidUserID(userID) {
		return closedSubscription()
	}

	m.mu.Lock()
	id := m.nextSubID
	m.nextSubID++
	ch := make(chan model.MoodCollection, 8)
	if m.subs[userID] == nil {
		m.subs[userID] = make(map[int]chan model.MoodCollection)
	}
	m.subs[userID][id] = ch
	ch <- m.snapshotLocked(userID)
	m.mu.Unlock()

	done := make(chan struct{})
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			m.mu.Lock()
			defer m.mu.Unlock()
			if subs, ok := m.subs[userID]; ok {
				if _, live := subs[id]; live {
					delete(subs, id)
					close(ch)
				}
			}
		})
	}

	// Honor context cancellation the way the Redis subscription does. The
	// done channel lets the watcher exit when Close runs first.
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-done:
		}
	}()

	return &MoodSubscription{C: ch, cancel: cancel}
}

// snapshotLocked copies the user's collection. Callers must hold mu.
func (m *MemoryStore) snapshotLocked(userID string) model.MoodCollection {
	out := model.MoodCollection{}
	for date, rec := range m.moods[userID] {
		out[date] = rec
	}
	return out
}

// notifyLocked fans a fresh snapshot out to every subscriber. A slow
// consumer drops its oldest pending snapshot; only the latest state
// matters. Callers must hold mu.
func (m *MemoryStore) notifyLocked(userID string) {
	col := m.snapshotLocked(userID)
	for _, ch := range m.subs[userID] {
		for {
			select {
			case ch <- col:
			default:
				select {
				case <-ch:
					continue
				default:
				}
			}
			break
		}
	}
}

// moodStoreAdapter exposes the MemoryStore mood methods under the MoodStore
// interface (the method names differ because one struct implements all
// three stores).
type moodStoreAdapter struct {
	*MemoryStore
}

// MoodStore returns the MemoryStore viewed as a MoodStore.
func (m *MemoryStore) MoodStore() MoodStore {
	return moodStoreAdapter{m}
}

func (a moodStoreAdapter) Save(ctx context.Context, userID string, rec model.MoodRecord) error {
	return a.SaveMood(ctx, userID, rec)
}

func (a moodStoreAdapter) Delete(ctx context.Context, userID, date string) error {
	return a.DeleteMood(ctx, userID, date)
}

func (a moodStoreAdapter) GetAll(ctx context.Context, userID string) model.MoodCollection {
	return a.GetAllMoods(ctx, userID)
}

func (a moodStoreAdapter) Subscribe(ctx context.Context, userID string) *MoodSubscription {
	return a.SubscribeMoods(ctx, userID)
}
