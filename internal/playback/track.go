package playback

import (
	"time"

	"github.com/16Mu/wind-chime-player-sub002/internal/stream"
)

// Track identifies a playable track and the metadata needed to play it.
// Tracks are immutable once handed to the orchestrator; metadata comes
// from the caller, already populated.
type Track struct {
	ID       int64
	Locator  string // local path or URL
	Title    string
	Artist   string
	Album    string
	Duration time.Duration
}

// stream converts to the minimal form the streaming engine needs.
func (t Track) stream() stream.Track {
	return stream.Track{ID: t.ID, Locator: t.Locator}
}

func streamTracks(tracks []Track) []stream.Track {
	out := make([]stream.Track, len(tracks))
	for i, t := range tracks {
		out[i] = t.stream()
	}
	return out
}

func indexOf(tracks []Track, id int64) int {
	for i, t := range tracks {
		if t.ID == id {
			return i
		}
	}
	return 0
}
