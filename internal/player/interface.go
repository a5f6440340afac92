package player

import (
	"context"
	"time"
)

// Interface defines the buffered-engine contract for dependency injection
// and testing.
type Interface interface {
	Load(ctx context.Context, data []byte, locator string) error
	Loaded() bool
	Play() error
	Pause()
	Resume()
	Stop()
	SeekTo(position time.Duration) error
	State() State
	Position() time.Duration
	Duration() time.Duration
	SetVolume(level float64)
	Volume() float64
	SetMuted(muted bool)
	Muted() bool
	FinishedChan() <-chan struct{}
}

// Verify Player implements Interface at compile time.
var _ Interface = (*Player)(nil)
