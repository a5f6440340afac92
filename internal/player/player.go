// Package player implements the buffered playback engine: a track is
// decoded completely into memory, after which play, pause and seek operate
// on the sample buffer with no I/O in the hot path.
package player

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
)

type State int

const (
	Stopped State = iota
	Playing
	Paused
)

// ErrNotLoaded is returned by Play and SeekTo before a successful Load.
var ErrNotLoaded = errors.New("player: no track loaded")

// Player is the buffered engine. All exported methods are safe for
// concurrent use.
type Player struct {
	mu  sync.Mutex
	out output
	clk clock
	log *slog.Logger

	state      State
	buf        *beep.Buffer
	format     beep.Format
	deviceRate beep.SampleRate
	locator    string
	duration   time.Duration

	ctrl *beep.Ctrl
	vol  *effects.Volume

	volumeLevel float64
	muted       bool

	// Position bookkeeping: offset is the position at the last
	// play/seek/pause, startedAt the monotonic clock reading when
	// playback last started. Position is derived from these, never
	// polled from the output device.
	offset    time.Duration
	startedAt time.Time

	finishedCh chan struct{}
}

// New creates a buffered player driving the speaker device.
func New(log *slog.Logger) *Player {
	return newPlayer(newSpeakerOutput(), realClock{}, log)
}

func newPlayer(out output, clk clock, log *slog.Logger) *Player {
	if log == nil {
		log = slog.Default()
	}
	return &Player{
		out:         out,
		clk:         clk,
		log:         log,
		state:       Stopped,
		volumeLevel: 1.0,
		finishedCh:  make(chan struct{}, 1),
	}
}

// Load decodes the complete encoded bytes into the in-memory sample
// buffer. It is abandonable: ctx is checked before the decode starts and
// again before the result is published, so a superseded load never
// mutates the player.
func (p *Player) Load(ctx context.Context, data []byte, locator string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	streamer, format, err := decode(data, locator)
	if err != nil {
		return err
	}
	buf := beep.NewBuffer(format)
	buf.Append(streamer)
	streamer.Close()

	if err := ctx.Err(); err != nil {
		return err
	}

	deviceRate, err := p.out.Init(format.SampleRate)
	if err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.teardownLocked()
	p.buf = buf
	p.format = format
	p.deviceRate = deviceRate
	p.locator = locator
	p.duration = format.SampleRate.D(buf.Len())
	p.offset = 0
	p.state = Stopped
	return nil
}

// Loaded reports whether a track is decoded and ready.
func (p *Player) Loaded() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buf != nil
}

// Locator returns the source locator of the loaded track.
func (p *Player) Locator() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.locator
}

// Duration returns the duration of the loaded track.
func (p *Player) Duration() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.duration
}

// FinishedChan signals when the sample buffer has played to its end.
func (p *Player) FinishedChan() <-chan struct{} {
	return p.finishedCh
}

// startLocked tears down any live output and starts a fresh streamer at
// the current offset. Recreating the output node on every start avoids
// double-start glitches.
func (p *Player) startLocked() {
	p.out.Clear()

	from := p.format.SampleRate.N(p.offset)
	if from < 0 {
		from = 0
	}
	if from > p.buf.Len() {
		from = p.buf.Len()
	}

	streamer := p.buf.Streamer(from, p.buf.Len())
	var s beep.Streamer = streamer
	if p.format.SampleRate != p.deviceRate {
		s = beep.Resample(4, p.format.SampleRate, p.deviceRate, streamer)
	}
	p.ctrl = &beep.Ctrl{Streamer: s, Paused: false}
	p.vol = &effects.Volume{
		Streamer: p.ctrl,
		Base:     2,
		Volume:   levelToVolume(p.volumeLevel),
		Silent:   p.muted || p.volumeLevel <= 0,
	}

	p.out.Play(beep.Seq(p.vol, beep.Callback(func() {
		select {
		case p.finishedCh <- struct{}{}:
		default:
		}
	})))

	p.state = Playing
	p.startedAt = p.clk.Now()
}

// teardownLocked releases the output without touching the offset.
func (p *Player) teardownLocked() {
	p.out.Clear()
	p.ctrl = nil
	p.vol = nil
}
