package playback

import "errors"

// ErrStreamingStart is the only failure that crosses the orchestrator
// boundary: the streaming engine is the sole audio path at start time, so
// if it refuses to play the user hears nothing and the caller must know.
// Fetch, decode and handoff failures degrade silently instead.
var ErrStreamingStart = errors.New("playback: streaming engine failed to start")

// ErrClosed is returned by commands issued after Close.
var ErrClosed = errors.New("playback: service closed")
