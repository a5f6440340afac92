package state

import (
	"database/sql"
	"errors"
	"time"
)

// PlayerState represents the saved volume state.
type PlayerState struct {
	Volume float64
	Muted  bool
}

// LastPlayed records where playback left off.
type LastPlayed struct {
	Locator   string
	Position  time.Duration
	UpdatedAt time.Time
}

// GetPlayerState returns the saved volume state, with defaults on first run.
func (m *Manager) GetPlayerState() (*PlayerState, error) {
	var volume float64
	var muted bool

	row := m.db.QueryRow(`SELECT volume, muted FROM player_state WHERE id = 1`)
	err := row.Scan(&volume, &muted)
	if errors.Is(err, sql.ErrNoRows) {
		return &PlayerState{Volume: 1.0, Muted: false}, nil
	}
	if err != nil {
		return nil, err
	}

	return &PlayerState{Volume: volume, Muted: muted}, nil
}

// SavePlayerState persists the volume state immediately.
func (m *Manager) SavePlayerState(ps PlayerState) error {
	_, err := m.db.Exec(`
		INSERT INTO player_state (id, volume, muted)
		VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			volume = excluded.volume,
			muted = excluded.muted
	`, ps.Volume, ps.Muted)
	return err
}

func getLastPlayed(db *sql.DB) (*LastPlayed, error) {
	row := db.QueryRow(`SELECT locator, position_ms, updated_at FROM last_played WHERE id = 1`)

	var lp LastPlayed
	var positionMs, updatedAt int64
	err := row.Scan(&lp.Locator, &positionMs, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil //nolint:nilnil // no saved state is valid on first run
	}
	if err != nil {
		return nil, err
	}

	lp.Position = time.Duration(positionMs) * time.Millisecond
	lp.UpdatedAt = time.Unix(updatedAt, 0)
	return &lp, nil
}

func saveLastPlayed(db *sql.DB, lp LastPlayed) error {
	_, err := db.Exec(`
		INSERT INTO last_played (id, locator, position_ms, updated_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			locator = excluded.locator,
			position_ms = excluded.position_ms,
			updated_at = excluded.updated_at
	`, lp.Locator, lp.Position.Milliseconds(), time.Now().Unix())
	return err
}
