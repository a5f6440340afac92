package playback

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/16Mu/wind-chime-player-sub002/internal/player"
	"github.com/16Mu/wind-chime-player-sub002/internal/source"
	"github.com/16Mu/wind-chime-player-sub002/internal/stream"
)

const defaultTickInterval = 100 * time.Millisecond

// Verify orchestrator implements Service at compile time.
var _ Service = (*orchestrator)(nil)

// orchestrator owns one mutable session at a time. Every asynchronous
// continuation carries the session token it was spawned under and
// re-validates it against o.token before mutating state; a stale token
// means the continuation belongs to a superseded session and must no-op.
type orchestrator struct {
	streaming stream.Engine
	buffered  player.Interface
	source    source.Source
	log       *slog.Logger

	mu sync.Mutex
	// Session state, all guarded by mu.
	token         uint64 // 0 = no session
	nextToken     uint64
	cancelLoad    context.CancelFunc
	track         Track
	playlist      []Track
	phase         Phase
	activeEngine  Engine
	bufferedReady bool
	switching     bool
	handoffDone   bool
	pendingSeek   *time.Duration
	playing       bool
	volume        float64
	closed        bool

	subs   []*Subscription
	subsMu sync.RWMutex

	tickInterval time.Duration
	done         chan struct{}
}

// Option configures the orchestrator.
type Option func(*orchestrator)

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(o *orchestrator) { o.log = log }
}

// WithTickInterval overrides the position notification interval.
func WithTickInterval(d time.Duration) Option {
	return func(o *orchestrator) { o.tickInterval = d }
}

// New creates a playback orchestrator over the given engines and byte
// source. Dependencies are injected so the session-token invariant is
// testable in isolation.
func New(streaming stream.Engine, buffered player.Interface, src source.Source, opts ...Option) Service {
	o := &orchestrator{
		streaming:    streaming,
		buffered:     buffered,
		source:       src,
		log:          slog.Default(),
		phase:        PhaseIdle,
		volume:       1.0,
		tickInterval: defaultTickInterval,
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(o)
	}
	go o.watch()
	return o
}

// Play starts a new session for track. The streaming engine is started
// immediately; the buffered upgrade happens in the background.
func (o *orchestrator) Play(track Track, playlist []Track) error {
	return o.startSession(track, playlist, false)
}

// startSession is the shared entry for Play, Next and Previous. When
// skipStreamingStart is set the streaming engine has already advanced to
// the new track on its own and only the session bookkeeping restarts.
func (o *orchestrator) startSession(track Track, playlist []Track, skipStreamingStart bool) error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return ErrClosed
	}

	// Cancel the previous session's load task without waiting for it;
	// the token check makes any still-running continuation inert.
	o.cancelSessionLocked()

	// The buffered engine may still hold output from the previous track.
	// Stop it before anything else so it cannot bleed through.
	o.buffered.Stop()

	o.nextToken++
	tok := o.nextToken
	o.token = tok
	ctx, cancel := context.WithCancel(context.Background())
	o.cancelLoad = cancel
	o.track = track
	if playlist != nil {
		o.playlist = append([]Track(nil), playlist...)
	}
	o.bufferedReady = false
	o.switching = false
	o.handoffDone = false
	o.pendingSeek = nil
	o.playing = true
	o.activeEngine = EngineStreaming
	o.phase = PhaseStreaming
	volume := o.volume
	o.mu.Unlock()

	if !skipStreamingStart {
		if playlist != nil {
			idx := indexOf(playlist, track.ID)
			if err := o.streaming.LoadPlaylist(streamTracks(playlist), idx); err != nil {
				o.log.Warn("load streaming playlist", "err", err)
			}
		}
		if err := o.streaming.Play(track.stream()); err != nil {
			cancel()
			o.mu.Lock()
			if o.token == tok {
				o.phase = PhaseError
				o.playing = false
			}
			o.mu.Unlock()
			return fmt.Errorf("%w: %v", ErrStreamingStart, err)
		}
	}
	if err := o.streaming.SetVolume(volume); err != nil {
		o.log.Debug("mirror volume to streaming engine", "err", err)
	}

	o.mu.Lock()
	if o.token != tok {
		// Superseded while the start command was in flight.
		o.mu.Unlock()
		cancel()
		return nil
	}
	o.phase = PhaseLoading
	o.mu.Unlock()

	o.emitEngine(EngineStreaming)
	go o.loadTask(ctx, tok, track)
	return nil
}

// cancelSessionLocked flags the in-flight load task as cancelled. It does
// not block on the task; cancellation is cooperative.
func (o *orchestrator) cancelSessionLocked() {
	if o.cancelLoad != nil {
		o.cancelLoad()
		o.cancelLoad = nil
	}
}

func (o *orchestrator) isCurrent(tok uint64) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.token == tok
}

// Pause pauses whichever engine currently owns output.
func (o *orchestrator) Pause() error {
	o.mu.Lock()
	if o.token == 0 {
		o.mu.Unlock()
		return nil
	}
	o.playing = false
	engine := o.activeEngine
	o.mu.Unlock()

	if engine == EngineBuffered {
		o.buffered.Pause()
		return nil
	}
	return o.streaming.Pause()
}

// Resume resumes whichever engine currently owns output.
func (o *orchestrator) Resume() error {
	o.mu.Lock()
	if o.token == 0 {
		o.mu.Unlock()
		return nil
	}
	o.playing = true
	engine := o.activeEngine
	o.mu.Unlock()

	if engine == EngineBuffered {
		// A handoff that completed while the session was paused only
		// positions the buffered engine; it is Stopped, not Paused, and
		// Play restarts it from the recorded offset.
		if o.buffered.State() == player.Stopped {
			return o.buffered.Play()
		}
		o.buffered.Resume()
		return nil
	}
	return o.streaming.Resume()
}

// Toggle flips between playing and paused.
func (o *orchestrator) Toggle() error {
	o.mu.Lock()
	playing := o.playing
	hasSession := o.token != 0
	o.mu.Unlock()
	if !hasSession {
		return nil
	}
	if playing {
		return o.Pause()
	}
	return o.Resume()
}

// Stop tears the session down: both engines are stopped unconditionally,
// the load task is cancelled, and state resets to its empty form. Safe to
// call repeatedly or with no session active.
func (o *orchestrator) Stop() error {
	o.mu.Lock()
	o.cancelSessionLocked()
	o.token = 0
	o.track = Track{}
	o.phase = PhaseIdle
	o.activeEngine = EngineStreaming
	o.bufferedReady = false
	o.switching = false
	o.handoffDone = false
	o.pendingSeek = nil
	o.playing = false
	o.mu.Unlock()

	o.buffered.Stop()
	if err := o.streaming.Stop(); err != nil {
		o.log.Warn("stop streaming engine", "err", err)
	}
	return nil
}

// SeekTo seeks to an absolute position. Once the buffered engine is ready
// this is instant; before that the target is parked as a pending seek and
// consumed at handoff, with a best-effort forward to the streaming engine.
func (o *orchestrator) SeekTo(position time.Duration) error {
	if position < 0 {
		position = 0
	}

	o.mu.Lock()
	if o.token == 0 {
		o.mu.Unlock()
		return nil
	}
	tok := o.token

	if o.bufferedReady && o.activeEngine == EngineBuffered {
		o.mu.Unlock()
		if err := o.buffered.SeekTo(position); err != nil {
			return err
		}
		o.emitPosition(position)
		return nil
	}

	if o.bufferedReady {
		// Still streaming: the user wants precision now, so park the
		// target and hand off immediately instead of waiting for the
		// load task's own attempt.
		pos := position
		o.pendingSeek = &pos
		o.mu.Unlock()
		o.tryHandoff(tok)
		return nil
	}

	pos := position
	o.pendingSeek = &pos
	o.mu.Unlock()

	// Best effort only: many streaming sources cannot seek, and the
	// pending seek is the real fallback.
	if err := o.streaming.Seek(position); err != nil {
		o.log.Debug("streaming seek unavailable", "err", err)
	}
	return nil
}

// Next advances the streaming engine's playlist cursor, which is the
// single source of truth for ordering, and restarts the session for the
// track it lands on.
func (o *orchestrator) Next() error {
	return o.skip(1)
}

// Previous moves the playlist cursor back and restarts the session.
func (o *orchestrator) Previous() error {
	return o.skip(-1)
}

func (o *orchestrator) skip(delta int) error {
	var (
		st  stream.Track
		err error
	)
	if delta > 0 {
		st, err = o.streaming.Next()
	} else {
		st, err = o.streaming.Previous()
	}
	if err != nil {
		return fmt.Errorf("advance playlist: %w", err)
	}

	// The streaming engine already started the new track; only the
	// session bookkeeping needs to restart.
	return o.startSession(o.lookupTrack(st), nil, true)
}

// lookupTrack recovers full track metadata from the caller-provided
// playlist, falling back to what the streaming engine reported.
func (o *orchestrator) lookupTrack(st stream.Track) Track {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, t := range o.playlist {
		if t.ID == st.ID {
			return t
		}
	}
	return Track{ID: st.ID, Locator: st.Locator}
}

// SetVolume mirrors the level to both engines at all times, so whichever
// engine is silently still holding the device stays in sync and the
// handoff is inaudible.
func (o *orchestrator) SetVolume(level float64) {
	if level < 0 {
		level = 0
	}
	if level > 1 {
		level = 1
	}
	o.mu.Lock()
	o.volume = level
	o.mu.Unlock()

	o.buffered.SetVolume(level)
	if err := o.streaming.SetVolume(level); err != nil {
		o.log.Debug("mirror volume to streaming engine", "err", err)
	}
}

// Volume returns the last set volume level.
func (o *orchestrator) Volume() float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.volume
}

// CurrentEngine returns which engine owns output right now.
func (o *orchestrator) CurrentEngine() Engine {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.activeEngine
}

// IsBufferedReady reports whether the in-memory decode has completed for
// the current session.
func (o *orchestrator) IsBufferedReady() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.bufferedReady
}

// Phase returns the session state machine phase.
func (o *orchestrator) Phase() Phase {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.phase
}

// IsPlaying reports the user-intended transport state.
func (o *orchestrator) IsPlaying() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.playing
}

// Position returns the position of whichever engine owns output.
func (o *orchestrator) Position() time.Duration {
	o.mu.Lock()
	engine := o.activeEngine
	hasSession := o.token != 0
	o.mu.Unlock()

	if !hasSession {
		return 0
	}
	if engine == EngineBuffered {
		return o.buffered.Position()
	}
	pos, err := o.streaming.Position()
	if err != nil {
		return 0
	}
	return pos
}

// Duration returns the current track duration: sample-accurate once the
// buffered engine has decoded, the caller's metadata before that.
func (o *orchestrator) Duration() time.Duration {
	o.mu.Lock()
	ready := o.bufferedReady
	metaDuration := o.track.Duration
	o.mu.Unlock()

	if ready {
		return o.buffered.Duration()
	}
	return metaDuration
}

// CurrentTrack returns a copy of the session's track, or nil.
func (o *orchestrator) CurrentTrack() *Track {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.token == 0 {
		return nil
	}
	t := o.track
	return &t
}

// Subscribe creates a new event subscription.
func (o *orchestrator) Subscribe() *Subscription {
	o.subsMu.Lock()
	defer o.subsMu.Unlock()
	sub := newSubscription()
	o.subs = append(o.subs, sub)
	return sub
}

// Close shuts the orchestrator down.
func (o *orchestrator) Close() error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return nil
	}
	o.closed = true
	o.cancelSessionLocked()
	o.token = 0
	o.phase = PhaseIdle
	o.playing = false
	close(o.done)
	o.mu.Unlock()

	o.buffered.Stop()
	if err := o.streaming.Stop(); err != nil {
		o.log.Warn("stop streaming engine", "err", err)
	}

	o.subsMu.Lock()
	for _, sub := range o.subs {
		sub.close()
	}
	o.subs = nil
	o.subsMu.Unlock()
	return nil
}

// watch emits periodic position notifications and reacts to the buffered
// engine reaching the end of its sample buffer.
func (o *orchestrator) watch() {
	ticker := time.NewTicker(o.tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-o.done:
			return
		case <-ticker.C:
			o.mu.Lock()
			active := o.token != 0 && o.playing && o.phase.IsActive()
			o.mu.Unlock()
			if active {
				o.emitPosition(o.Position())
			}
		case <-o.buffered.FinishedChan():
			o.handleTrackFinished()
		}
	}
}

func (o *orchestrator) handleTrackFinished() {
	o.mu.Lock()
	if o.token == 0 || o.activeEngine != EngineBuffered {
		o.mu.Unlock()
		return
	}
	track := o.track
	o.playing = false
	o.mu.Unlock()
	o.emitEnded(track)
}

// Event fan-out

func (o *orchestrator) emitEngine(e Engine) {
	o.subsMu.RLock()
	defer o.subsMu.RUnlock()
	for _, sub := range o.subs {
		sub.sendEngine(EngineChange{Engine: e})
	}
}

func (o *orchestrator) emitPosition(pos time.Duration) {
	o.subsMu.RLock()
	defer o.subsMu.RUnlock()
	for _, sub := range o.subs {
		sub.sendPosition(PositionChange{Position: pos})
	}
}

func (o *orchestrator) emitEnded(track Track) {
	o.subsMu.RLock()
	defer o.subsMu.RUnlock()
	for _, sub := range o.subs {
		sub.sendEnded(TrackEnded{Track: track})
	}
}

func (o *orchestrator) emitProgress(percent int) {
	o.subsMu.RLock()
	defer o.subsMu.RUnlock()
	for _, sub := range o.subs {
		sub.sendProgress(LoadingProgress{Percent: percent})
	}
}

func (o *orchestrator) emitError(op string, err error) {
	o.subsMu.RLock()
	defer o.subsMu.RUnlock()
	for _, sub := range o.subs {
		sub.sendError(ErrorEvent{Operation: op, Err: err})
	}
}
