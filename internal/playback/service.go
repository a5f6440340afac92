// Package playback implements the hybrid playback orchestrator.
//
// Two engines cooperate on every track: the streaming engine starts
// producing audio within ~100ms while a background task fetches and
// decodes the full track into the buffered engine, which then takes over
// for instant, frame-accurate seeking. The orchestrator serializes every
// command against the current engine ownership and tolerates new commands
// arriving before the previous handoff has finished.
package playback

import "time"

// Service defines the playback orchestrator contract.
type Service interface {
	// Playback control
	Play(track Track, playlist []Track) error
	Pause() error
	Resume() error
	Toggle() error
	Stop() error
	SeekTo(position time.Duration) error
	Next() error
	Previous() error

	// Volume, mirrored to both engines so a handoff is inaudible
	SetVolume(level float64)
	Volume() float64

	// State queries
	CurrentEngine() Engine
	IsBufferedReady() bool
	Phase() Phase
	IsPlaying() bool
	Position() time.Duration
	Duration() time.Duration
	CurrentTrack() *Track

	// Event subscription
	Subscribe() *Subscription

	// Lifecycle
	Close() error
}
