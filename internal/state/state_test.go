package state

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := OpenPath(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })
	return m
}

func TestPlayerState_DefaultsOnFirstRun(t *testing.T) {
	m := openTestManager(t)

	ps, err := m.GetPlayerState()
	require.NoError(t, err)
	assert.Equal(t, 1.0, ps.Volume)
	assert.False(t, ps.Muted)
}

func TestPlayerState_RoundTrip(t *testing.T) {
	m := openTestManager(t)

	require.NoError(t, m.SavePlayerState(PlayerState{Volume: 0.35, Muted: true}))

	ps, err := m.GetPlayerState()
	require.NoError(t, err)
	assert.Equal(t, 0.35, ps.Volume)
	assert.True(t, ps.Muted)

	// Second save overwrites, never duplicates.
	require.NoError(t, m.SavePlayerState(PlayerState{Volume: 0.9, Muted: false}))
	ps, err = m.GetPlayerState()
	require.NoError(t, err)
	assert.Equal(t, 0.9, ps.Volume)
	assert.False(t, ps.Muted)
}

func TestLastPlayed_NilOnFirstRun(t *testing.T) {
	m := openTestManager(t)

	lp, err := m.GetLastPlayed()
	require.NoError(t, err)
	assert.Nil(t, lp)
}

func TestLastPlayed_DebouncedWrite(t *testing.T) {
	m := openTestManager(t)

	// Rapid updates collapse into the final one.
	m.SaveLastPlayed(LastPlayed{Locator: "/music/a.mp3", Position: time.Second})
	m.SaveLastPlayed(LastPlayed{Locator: "/music/a.mp3", Position: 2 * time.Second})
	m.SaveLastPlayed(LastPlayed{Locator: "/music/a.mp3", Position: 3 * time.Second})

	lp, err := m.GetLastPlayed()
	require.NoError(t, err)
	assert.Nil(t, lp, "nothing should hit the database before the debounce fires")

	assert.Eventually(t, func() bool {
		lp, err := m.GetLastPlayed()
		return err == nil && lp != nil && lp.Position == 3*time.Second
	}, 2*time.Second, 20*time.Millisecond)
}

func TestLastPlayed_CloseFlushesPending(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "state.db")
	m, err := OpenPath(dbPath)
	require.NoError(t, err)

	m.SaveLastPlayed(LastPlayed{Locator: "/music/b.mp3", Position: 90 * time.Second})
	require.NoError(t, m.Close())

	reopened, err := OpenPath(dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	lp, err := reopened.GetLastPlayed()
	require.NoError(t, err)
	require.NotNil(t, lp)
	assert.Equal(t, "/music/b.mp3", lp.Locator)
	assert.Equal(t, 90*time.Second, lp.Position)
}

func TestOpenPath_CreatesParentDirectories(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "state.db")
	m, err := OpenPath(dbPath)
	require.NoError(t, err)
	require.NoError(t, m.Close())
}
