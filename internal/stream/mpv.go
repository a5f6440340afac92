package stream

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"
)

const commandTimeout = 2 * time.Second

// MPV drives an external mpv process over its JSON IPC socket.
//
// mpv speaks newline-delimited JSON: each request carries a request_id and
// the matching response echoes it back. Event messages (no request_id) are
// discarded; position and state are queried explicitly instead.
type MPV struct {
	conn net.Conn
	log  *slog.Logger

	writeMu sync.Mutex // serializes command writes

	mu      sync.Mutex
	nextID  int64
	pending map[int64]chan mpvResponse
	readErr error

	plMu     sync.Mutex
	playlist []Track
	index    int
	current  *Track
}

type mpvRequest struct {
	Command   []any `json:"command"`
	RequestID int64 `json:"request_id"`
}

type mpvResponse struct {
	Error     string          `json:"error"`
	Data      json.RawMessage `json:"data"`
	RequestID int64           `json:"request_id"`
}

// ConnectMPV connects to a running mpv process listening on the given
// unix socket (mpv --idle --input-ipc-server=<path>).
func ConnectMPV(socketPath string, log *slog.Logger) (*MPV, error) {
	if log == nil {
		log = slog.Default()
	}
	conn, err := net.DialTimeout("unix", socketPath, commandTimeout)
	if err != nil {
		return nil, fmt.Errorf("connect mpv socket: %w", err)
	}
	m := &MPV{
		conn:    conn,
		log:     log,
		pending: make(map[int64]chan mpvResponse),
		index:   -1,
	}
	go m.readLoop()
	return m, nil
}

// Close tears down the socket connection. The mpv process itself is left
// running; it is owned by whoever started it.
func (m *MPV) Close() error {
	return m.conn.Close()
}

func (m *MPV) readLoop() {
	scanner := bufio.NewScanner(m.conn)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		var resp mpvResponse
		if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
			continue
		}
		if resp.RequestID == 0 {
			// Asynchronous event, not a command response.
			continue
		}
		m.mu.Lock()
		ch, ok := m.pending[resp.RequestID]
		delete(m.pending, resp.RequestID)
		m.mu.Unlock()
		if ok {
			ch <- resp
		}
	}
	err := scanner.Err()
	if err == nil {
		err = errors.New("mpv: connection closed")
	}
	m.mu.Lock()
	m.readErr = err
	for id, ch := range m.pending {
		delete(m.pending, id)
		close(ch)
	}
	m.mu.Unlock()
}

// command sends a single mpv command and waits for its response.
func (m *MPV) command(args ...any) (json.RawMessage, error) {
	m.mu.Lock()
	if m.readErr != nil {
		err := m.readErr
		m.mu.Unlock()
		return nil, err
	}
	m.nextID++
	id := m.nextID
	ch := make(chan mpvResponse, 1)
	m.pending[id] = ch
	m.mu.Unlock()

	payload, err := json.Marshal(mpvRequest{Command: args, RequestID: id})
	if err != nil {
		return nil, err
	}
	payload = append(payload, '\n')

	m.writeMu.Lock()
	_, err = m.conn.Write(payload)
	m.writeMu.Unlock()
	if err != nil {
		m.mu.Lock()
		delete(m.pending, id)
		m.mu.Unlock()
		return nil, fmt.Errorf("mpv write: %w", err)
	}

	select {
	case resp, ok := <-ch:
		if !ok {
			return nil, errors.New("mpv: connection closed")
		}
		if resp.Error != "success" {
			return nil, fmt.Errorf("mpv: %s", resp.Error)
		}
		return resp.Data, nil
	case <-time.After(commandTimeout):
		m.mu.Lock()
		delete(m.pending, id)
		m.mu.Unlock()
		return nil, errors.New("mpv: command timed out")
	}
}

// Play starts playback of the given track, replacing the current one.
func (m *MPV) Play(track Track) error {
	if _, err := m.command("loadfile", track.Locator, "replace"); err != nil {
		return fmt.Errorf("mpv play: %w", err)
	}
	if _, err := m.command("set_property", "pause", false); err != nil {
		return fmt.Errorf("mpv play: %w", err)
	}
	m.plMu.Lock()
	t := track
	m.current = &t
	m.plMu.Unlock()
	return nil
}

func (m *MPV) Stop() error {
	_, err := m.command("stop")
	if err != nil {
		return fmt.Errorf("mpv stop: %w", err)
	}
	return nil
}

func (m *MPV) Pause() error {
	_, err := m.command("set_property", "pause", true)
	return err
}

func (m *MPV) Resume() error {
	_, err := m.command("set_property", "pause", false)
	return err
}

// Seek moves to an absolute position. Network sources refuse to seek;
// that is reported as ErrSeekUnsupported rather than an error.
func (m *MPV) Seek(position time.Duration) error {
	m.plMu.Lock()
	cur := m.current
	m.plMu.Unlock()
	if cur != nil && isRemote(cur.Locator) {
		return ErrSeekUnsupported
	}
	if _, err := m.command("seek", position.Seconds(), "absolute"); err != nil {
		return ErrSeekUnsupported
	}
	return nil
}

// Position queries mpv's playback-time property.
func (m *MPV) Position() (time.Duration, error) {
	data, err := m.command("get_property", "playback-time")
	if err != nil {
		return 0, fmt.Errorf("mpv position: %w", err)
	}
	var seconds float64
	if err := json.Unmarshal(data, &seconds); err != nil {
		return 0, fmt.Errorf("mpv position: %w", err)
	}
	return time.Duration(seconds * float64(time.Second)), nil
}

// SetVolume sets mpv's output volume. mpv uses 0-100.
func (m *MPV) SetVolume(level float64) error {
	if level < 0 {
		level = 0
	}
	if level > 1 {
		level = 1
	}
	_, err := m.command("set_property", "volume", level*100)
	return err
}

// LoadPlaylist replaces the playlist and positions the cursor at index
// without starting playback. The cursor lives in this adapter; mpv only
// ever sees one file at a time via loadfile.
func (m *MPV) LoadPlaylist(tracks []Track, index int) error {
	if index < 0 || index >= len(tracks) {
		index = 0
	}
	m.plMu.Lock()
	m.playlist = append([]Track(nil), tracks...)
	m.index = index
	m.plMu.Unlock()
	return nil
}

// Next advances the playlist cursor and starts the next track.
func (m *MPV) Next() (Track, error) {
	return m.step(1)
}

// Previous moves the playlist cursor back and starts the previous track.
func (m *MPV) Previous() (Track, error) {
	return m.step(-1)
}

func (m *MPV) step(delta int) (Track, error) {
	m.plMu.Lock()
	if len(m.playlist) == 0 {
		m.plMu.Unlock()
		return Track{}, ErrNoPlaylist
	}
	next := m.index + delta
	if next < 0 || next >= len(m.playlist) {
		m.plMu.Unlock()
		return Track{}, ErrEndOfPlaylist
	}
	m.index = next
	track := m.playlist[next]
	m.plMu.Unlock()

	if err := m.Play(track); err != nil {
		return Track{}, err
	}
	return track, nil
}

func isRemote(locator string) bool {
	return strings.HasPrefix(locator, "http://") || strings.HasPrefix(locator, "https://")
}

var _ Engine = (*MPV)(nil)
