// Package state persists playback state (volume, last played position)
// across runs in a small SQLite database.
package state

import (
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/adrg/xdg"
	_ "modernc.org/sqlite" // SQLite driver
)

const (
	appName      = "windchime"
	dbFileName   = "windchime.db"
	saveDebounce = 500 * time.Millisecond
)

type Manager struct {
	db        *sql.DB
	saveMu    sync.Mutex
	saveTimer *time.Timer
	pending   *LastPlayed
}

// Open opens (creating if needed) the state database at the XDG data path.
func Open() (*Manager, error) {
	dbPath, err := xdg.DataFile(filepath.Join(appName, dbFileName))
	if err != nil {
		return nil, err
	}
	return OpenPath(dbPath)
}

// OpenPath opens the state database at an explicit path (used by tests).
func OpenPath(dbPath string) (*Manager, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Manager{db: db}, nil
}

func (m *Manager) Close() error {
	m.saveMu.Lock()
	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}
	pending := m.pending
	m.pending = nil
	m.saveMu.Unlock()

	// Flush pending state
	if pending != nil {
		_ = saveLastPlayed(m.db, *pending)
	}

	return m.db.Close()
}

// SaveLastPlayed records the position debounced: position updates arrive
// every 100ms and writing each one through would hammer the disk.
func (m *Manager) SaveLastPlayed(lp LastPlayed) {
	m.saveMu.Lock()
	defer m.saveMu.Unlock()

	m.pending = &lp

	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}

	m.saveTimer = time.AfterFunc(saveDebounce, func() {
		m.saveMu.Lock()
		pending := m.pending
		m.pending = nil
		m.saveMu.Unlock()

		if pending != nil {
			_ = saveLastPlayed(m.db, *pending)
		}
	})
}

// GetLastPlayed returns the saved last-played state, nil on first run.
func (m *Manager) GetLastPlayed() (*LastPlayed, error) {
	return getLastPlayed(m.db)
}
