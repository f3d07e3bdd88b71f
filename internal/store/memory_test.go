package store

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moodcal/internal/model"
)

func record(date string, value int) model.MoodRecord {
	return model.MoodRecord{Date: date, Value: value, Timestamp: time.Now().UTC()}
}

// =============================================================================
// IDENTITY DIRECTORY
// =============================================================================

func TestIdentityDirectory_NormalizationCollapsesCaseAndWhitespace(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Register(ctx, "  Alice ", "user-1"))

	for _, name := range []string{"alice", "ALICE", "  Alice "} {
		res, err := s.Resolve(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, model.ResolutionID, res.Kind, "resolve(%q)", name)
		assert.Equal(t, "user-1", res.UserID)
	}
}

func TestIdentityDirectory_AbsentUsername(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	res, err := s.Resolve(ctx, "nobody")
	require.NoError(t, err)
	assert.Equal(t, model.ResolutionAbsent, res.Kind)
}

func TestIdentityDirectory_LegacyValueIsNeverAnIdentifier(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	s.SeedLegacyMapping("bob", "bob@example.com")

	res, err := s.Resolve(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, model.ResolutionLegacyEmail, res.Kind)
	assert.Equal(t, "bob@example.com", res.Email)
	assert.Empty(t, res.UserID)
}

func TestIdentityDirectory_RegisterOverwritesLegacyMapping(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	s.SeedLegacyMapping("bob", "bob@example.com")

	require.NoError(t, s.Register(ctx, "Bob", "user-2"))

	res, err := s.Resolve(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, model.ResolutionID, res.Kind)
	assert.Equal(t, "user-2", res.UserID)
}

// =============================================================================
// PROFILE STORE
// =============================================================================

func TestProfileStore_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	p := model.Profile{ID: "user-1", Username: "alice", Email: "alice@example.com"}

	require.NoError(t, s.Save(ctx, "user-1", p))

	got := s.Get(ctx, "user-1")
	require.NotNil(t, got)
	assert.Equal(t, p, *got)
}

func TestProfileStore_AbsentAndMalformedCollapse(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	assert.Nil(t, s.Get(ctx, "missing"))
	assert.Nil(t, s.Get(ctx, "a.b"))
	assert.Nil(t, s.Get(ctx, "a@b"))
}

func TestProfileStore_MalformedIDSaveIsNoOp(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Save(ctx, "a.b", model.Profile{ID: "a.b"}))
	require.NoError(t, s.Save(ctx, "a@b", model.Profile{ID: "a@b"}))

	assert.Nil(t, s.Get(ctx, "a.b"))
	assert.Nil(t, s.Get(ctx, "a@b"))
}

// =============================================================================
// MOOD STORE
// =============================================================================

func TestMoodStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	moods := NewMemoryStore().MoodStore()
	rec := record("2024-05-01", 2)

	require.NoError(t, moods.Save(ctx, "user-1", rec))

	col := moods.GetAll(ctx, "user-1")
	require.Len(t, col, 1)
	assert.Equal(t, rec, col["2024-05-01"])
}

func TestMoodStore_OverwriteSameDate(t *testing.T) {
	ctx := context.Background()
	moods := NewMemoryStore().MoodStore()

	require.NoError(t, moods.Save(ctx, "user-1", record("2024-05-01", 2)))
	require.NoError(t, moods.Save(ctx, "user-1", record("2024-05-01", -1)))

	col := moods.GetAll(ctx, "user-1")
	require.Len(t, col, 1)
	assert.Equal(t, -1, col["2024-05-01"].Value)
}

func TestMoodStore_DeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	moods := NewMemoryStore().MoodStore()

	require.NoError(t, moods.Save(ctx, "user-1", record("2024-05-01", 2)))
	require.NoError(t, moods.Save(ctx, "user-1", record("2024-05-02", 1)))

	require.NoError(t, moods.Delete(ctx, "user-1", "2024-05-01"))
	afterFirst := moods.GetAll(ctx, "user-1")

	require.NoError(t, moods.Delete(ctx, "user-1", "2024-05-01"))
	afterSecond := moods.GetAll(ctx, "user-1")

	assert.Equal(t, afterFirst, afterSecond)
	assert.Len(t, afterSecond, 1)
}

func TestMoodStore_MalformedIDGuard(t *testing.T) {
	ctx := context.Background()
	moods := NewMemoryStore().MoodStore()

	for _, id := range []string{"a.b", "a@b", ""} {
		require.NoError(t, moods.Save(ctx, id, record("2024-05-01", 2)), "save %q", id)
		require.NoError(t, moods.Delete(ctx, id, "2024-05-01"), "delete %q", id)
		assert.Empty(t, moods.GetAll(ctx, id), "getAll %q", id)
	}
}

func TestMoodStore_SubscribeDeliversCurrentStateFirst(t *testing.T) {
	ctx := context.Background()
	moods := NewMemoryStore().MoodStore()
	rec := record("2024-05-01", 3)
	require.NoError(t, moods.Save(ctx, "user-1", rec))

	sub := moods.Subscribe(ctx, "user-1")
	defer sub.Close()

	select {
	case col := <-sub.C:
		require.Len(t, col, 1)
		assert.Equal(t, rec, col["2024-05-01"])
	case <-time.After(time.Second):
		t.Fatal("no immediate delivery of current collection")
	}
}

func TestMoodStore_SubscribeDeliversEmptyCollectionForNewUser(t *testing.T) {
	ctx := context.Background()
	moods := NewMemoryStore().MoodStore()

	sub := moods.Subscribe(ctx, "user-1")
	defer sub.Close()

	select {
	case col := <-sub.C:
		assert.Empty(t, col)
	case <-time.After(time.Second):
		t.Fatal("no immediate delivery for user without records")
	}
}

func TestMoodStore_SubscribeSeesLaterWrites(t *testing.T) {
	ctx := context.Background()
	moods := NewMemoryStore().MoodStore()

	sub := moods.Subscribe(ctx, "user-1")
	defer sub.Close()

	// Drain the initial empty delivery.
	select {
	case <-sub.C:
	case <-time.After(time.Second):
		t.Fatal("no initial delivery")
	}

	require.NoError(t, moods.Save(ctx, "user-1", record("2024-05-01", 1)))

	select {
	case col := <-sub.C:
		require.Len(t, col, 1)
		assert.Equal(t, 1, col["2024-05-01"].Value)
	case <-time.After(time.Second):
		t.Fatal("no delivery after write")
	}
}

func TestMoodStore_SubscribeMalformedIDIsSafe(t *testing.T) {
	ctx := context.Background()
	moods := NewMemoryStore().MoodStore()

	sub := moods.Subscribe(ctx, "a@b")

	// One empty delivery, then the channel closes.
	col, open := <-sub.C
	assert.True(t, open)
	assert.Empty(t, col)

	_, open = <-sub.C
	assert.False(t, open)

	// Closing twice must be a safe no-op.
	sub.Close()
	sub.Close()
}

func TestMoodStore_CloseStopsDeliveries(t *testing.T) {
	ctx := context.Background()
	moods := NewMemoryStore().MoodStore()

	sub := moods.Subscribe(ctx, "user-1")
	<-sub.C
	sub.Close()

	// The channel closes after cancellation; a write afterwards must not
	// panic on the removed subscriber.
	require.NoError(t, moods.Save(ctx, "user-1", record("2024-05-01", 1)))

	for {
		if _, open := <-sub.C; !open {
			return
		}
	}
}

func TestMoodStore_CloseReleasesWatcherGoroutine(t *testing.T) {
	moods := NewMemoryStore().MoodStore()
	before := runtime.NumGoroutine()

	// Subscriptions on a background context must tear down fully on Close;
	// each one starts a watcher goroutine that has to exit with it.
	for i := 0; i < 20; i++ {
		sub := moods.Subscribe(context.Background(), "user-1")
		<-sub.C
		sub.Close()
	}

	assert.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= before+2
	}, time.Second, 10*time.Millisecond, "watcher goroutines must exit after Close")
}

// =============================================================================
// SCHEMA HELPERS
// =============================================================================

func TestValidUserID(t *testing.T) {
	assert.True(t, ValidUserID("2f1d9c3a"))
	assert.False(t, ValidUserID(""))
	assert.False(t, ValidUserID("a.b"))
	assert.False(t, ValidUserID("a@b"))
	assert.False(t, ValidUserID("a/b"))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "alice", Normalize("  Alice "))
	assert.Equal(t, "alice", Normalize("ALICE"))
}
