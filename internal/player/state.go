package player

// State represents the transport state machine.
//
// Valid transitions:
//   - Stopped → Playing (via Play, requires a loaded buffer)
//   - Playing → Paused  (via Pause)
//   - Playing → Stopped (via Stop)
//   - Paused  → Playing (via Resume or Play)
//   - Paused  → Stopped (via Stop)
//
// Invalid transitions are no-ops:
//   - Stopped → Paused  (ignored)
//   - Paused  → Paused  (ignored)
//   - Playing → Playing (Play restarts the output from the current offset)
//
// SeekTo never changes the transport state: a playing player keeps
// playing at the new position, a paused or stopped one stays put.

// String returns the state name for debugging.
func (s State) String() string {
	switch s {
	case Stopped:
		return "Stopped"
	case Playing:
		return "Playing"
	case Paused:
		return "Paused"
	default:
		return "Unknown"
	}
}

// IsActive returns true if the engine holds an output connection
// (Playing or Paused).
func (s State) IsActive() bool {
	return s == Playing || s == Paused
}
