package playback

// Engine names which playback path currently owns the output device.
type Engine int

const (
	EngineStreaming Engine = iota
	EngineBuffered
)

// String returns the engine name.
func (e Engine) String() string {
	switch e {
	case EngineStreaming:
		return "Streaming"
	case EngineBuffered:
		return "Buffered"
	default:
		return "Unknown"
	}
}

// Phase represents the session state machine.
//
// Valid transitions:
//   - Idle           → Streaming      (Play issues the streaming start)
//   - Streaming      → Loading        (load task spawned)
//   - Loading        → BufferedReady  (decode succeeded; streaming still active)
//   - Loading        → Streaming      (fetch/decode failed; streaming for good)
//   - BufferedReady  → Switching      (handoff entered, at most once per session)
//   - Switching      → BufferedActive (handoff succeeded; terminal steady state)
//   - Switching      → Streaming      (handoff failed; streaming for good)
//   - Streaming      → Error          (streaming start failed; only path to Error)
//   - any            → Idle           (Stop, or a new Play resetting the session)
//
// Decode and seek failures never reach Error: the streaming engine is
// still producing audio, so the session degrades instead of dying.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseStreaming
	PhaseLoading
	PhaseBufferedReady
	PhaseSwitching
	PhaseBufferedActive
	PhaseError
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "Idle"
	case PhaseStreaming:
		return "Streaming"
	case PhaseLoading:
		return "Loading"
	case PhaseBufferedReady:
		return "BufferedReady"
	case PhaseSwitching:
		return "Switching"
	case PhaseBufferedActive:
		return "BufferedActive"
	case PhaseError:
		return "Error"
	default:
		return "Unknown"
	}
}

// IsActive returns true if a session exists and has not failed.
func (p Phase) IsActive() bool {
	return p != PhaseIdle && p != PhaseError
}
