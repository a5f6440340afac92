package playback

import "time"

// EngineChange is emitted when output ownership moves between engines:
// once when a session starts on the streaming engine, and once when the
// handoff promotes the buffered engine.
type EngineChange struct {
	Engine Engine
}

// PositionChange is emitted on a fixed interval while a session is
// playing, and immediately after an instant seek.
type PositionChange struct {
	Position time.Duration
}

// TrackEnded is emitted when the buffered engine plays its sample buffer
// to the end. The orchestrator does not auto-advance; the consumer
// decides whether to call Next.
type TrackEnded struct {
	Track Track
}

// LoadingProgress reports byte-source fetch progress for the current
// session's load task.
type LoadingProgress struct {
	Percent int
}

// ErrorEvent is emitted when a load or handoff stage fails and the
// session degrades to the streaming engine. These failures never surface
// as errors from the command methods.
type ErrorEvent struct {
	Operation string // e.g. "fetch", "decode", "handoff"
	Err       error
}
