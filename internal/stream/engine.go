// Package stream wraps the external low-latency playback process.
//
// The external engine is the fast path: it produces audio within ~100ms of
// a play command but offers only approximate seeking, and none at all for
// network sources. It also owns the playlist cursor, so track ordering for
// Next/Previous is decided here, not by the caller.
package stream

import (
	"errors"
	"time"
)

// Track is the minimal description the external engine needs to play.
type Track struct {
	ID      int64
	Locator string // local path or URL
}

var (
	// ErrSeekUnsupported is returned when the current source cannot seek
	// (typically network streams). Callers should treat it as a normal
	// outcome, not a failure.
	ErrSeekUnsupported = errors.New("stream: seek unsupported for this source")

	// ErrNoPlaylist is returned by Next/Previous when no playlist is loaded.
	ErrNoPlaylist = errors.New("stream: no playlist loaded")

	// ErrEndOfPlaylist is returned by Next/Previous when the cursor cannot
	// move any further.
	ErrEndOfPlaylist = errors.New("stream: end of playlist")
)

// Engine is the command surface of the external playback process.
// Implementations must tolerate calls from multiple goroutines.
type Engine interface {
	// Play starts playback of the given track, replacing whatever was
	// playing before.
	Play(track Track) error
	Stop() error
	Pause() error
	Resume() error

	// Seek moves playback to an absolute position. May return
	// ErrSeekUnsupported depending on the source.
	Seek(position time.Duration) error

	// Position reports the engine's best estimate of the current
	// playback position.
	Position() (time.Duration, error)

	// SetVolume sets the output level in [0.0, 1.0].
	SetVolume(level float64) error

	// LoadPlaylist replaces the engine's playlist and positions the
	// cursor at index without starting playback.
	LoadPlaylist(tracks []Track, index int) error

	// Next and Previous move the playlist cursor and start playback of
	// the returned track.
	Next() (Track, error)
	Previous() (Track, error)
}
