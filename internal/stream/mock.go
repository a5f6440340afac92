package stream

import (
	"sync"
	"time"
)

// Mock is a test double for Engine.
type Mock struct {
	mu sync.Mutex

	active   bool
	paused   bool
	position time.Duration
	volume   float64
	playlist []Track
	index    int
	current  *Track

	playErr  error
	seekErr  error
	posErr   error
	stopGate chan struct{}

	playCalls []Track
	stopCalls int
	seekCalls []time.Duration
	volCalls  []float64
}

// NewMock creates a new mock streaming engine for testing.
func NewMock() *Mock {
	return &Mock{index: -1}
}

func (m *Mock) Play(track Track) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playCalls = append(m.playCalls, track)
	if m.playErr != nil {
		return m.playErr
	}
	t := track
	m.current = &t
	m.active = true
	m.paused = false
	return nil
}

func (m *Mock) Stop() error {
	m.mu.Lock()
	gate := m.stopGate
	m.mu.Unlock()
	if gate != nil {
		<-gate
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopCalls++
	m.active = false
	m.paused = false
	return nil
}

func (m *Mock) Pause() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active {
		m.paused = true
	}
	return nil
}

func (m *Mock) Resume() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active {
		m.paused = false
	}
	return nil
}

func (m *Mock) Seek(position time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seekCalls = append(m.seekCalls, position)
	if m.seekErr != nil {
		return m.seekErr
	}
	m.position = position
	return nil
}

func (m *Mock) Position() (time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.posErr != nil {
		return 0, m.posErr
	}
	return m.position, nil
}

func (m *Mock) SetVolume(level float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.volume = level
	m.volCalls = append(m.volCalls, level)
	return nil
}

func (m *Mock) LoadPlaylist(tracks []Track, index int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playlist = append([]Track(nil), tracks...)
	m.index = index
	return nil
}

func (m *Mock) Next() (Track, error) {
	return m.step(1)
}

func (m *Mock) Previous() (Track, error) {
	return m.step(-1)
}

func (m *Mock) step(delta int) (Track, error) {
	m.mu.Lock()
	if len(m.playlist) == 0 {
		m.mu.Unlock()
		return Track{}, ErrNoPlaylist
	}
	next := m.index + delta
	if next < 0 || next >= len(m.playlist) {
		m.mu.Unlock()
		return Track{}, ErrEndOfPlaylist
	}
	m.index = next
	track := m.playlist[next]
	m.mu.Unlock()

	if err := m.Play(track); err != nil {
		return Track{}, err
	}
	return track, nil
}

// Test helpers

// Active reports whether the mock currently holds a live output.
func (m *Mock) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

func (m *Mock) Paused() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.paused
}

func (m *Mock) SetPlayError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playErr = err
}

func (m *Mock) SetSeekError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seekErr = err
}

func (m *Mock) SetPositionError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.posErr = err
}

// GateStop makes Stop block until the returned channel is closed.
func (m *Mock) GateStop() chan struct{} {
	ch := make(chan struct{})
	m.mu.Lock()
	m.stopGate = ch
	m.mu.Unlock()
	return ch
}

// SetPosition scripts the position the engine reports.
func (m *Mock) SetPosition(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.position = d
}

func (m *Mock) Volume() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.volume
}

func (m *Mock) PlayCalls() []Track {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Track(nil), m.playCalls...)
}

func (m *Mock) StopCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopCalls
}

func (m *Mock) SeekCalls() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]time.Duration(nil), m.seekCalls...)
}

func (m *Mock) VolumeCalls() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]float64(nil), m.volCalls...)
}

// Verify Mock implements Engine at compile time.
var _ Engine = (*Mock)(nil)
