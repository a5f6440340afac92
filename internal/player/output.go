package player

import (
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
)

// output is the seam between the engine and the audio device. The
// production implementation drives the beep speaker; tests substitute a
// fake so the engine's transport logic runs without a sound card.
type output interface {
	// Init opens the device at the requested sample rate if it is not
	// open yet, and returns the rate the device actually runs at.
	Init(sampleRate beep.SampleRate) (beep.SampleRate, error)
	Play(s beep.Streamer)
	Clear()
	Lock()
	Unlock()
}

// clock supplies the monotonic time reference positions are derived from.
type clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// speakerOutput adapts the package-level beep speaker. The speaker can
// only be initialized once per process; the first track's sample rate
// wins and later tracks are resampled to it.
type speakerOutput struct {
	mu          sync.Mutex
	initialized bool
	sampleRate  beep.SampleRate
}

func newSpeakerOutput() *speakerOutput {
	return &speakerOutput{}
}

func (o *speakerOutput) Init(sampleRate beep.SampleRate) (beep.SampleRate, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.initialized {
		return o.sampleRate, nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return 0, err
	}
	o.initialized = true
	o.sampleRate = sampleRate
	return sampleRate, nil
}

func (o *speakerOutput) Play(s beep.Streamer) { speaker.Play(s) }

func (o *speakerOutput) Clear() { speaker.Clear() }

func (o *speakerOutput) Lock() { speaker.Lock() }

func (o *speakerOutput) Unlock() { speaker.Unlock() }
