package playback

import (
	"context"
	"errors"

	"github.com/dustin/go-humanize"
)

// loadTask is the cancellable background unit of one session: fetch the
// complete bytes, decode them into the buffered engine, publish readiness,
// attempt the handoff. Cancellation is cooperative: it is checked at each
// stage boundary, and a cancelled or superseded task unwinds silently
// without touching orchestrator state.
func (o *orchestrator) loadTask(ctx context.Context, tok uint64, track Track) {
	progress := func(done, total int64) {
		if total > 0 && o.isCurrent(tok) {
			o.emitProgress(int(done * 100 / total))
		}
	}

	data, err := o.source.Fetch(ctx, track.Locator, progress)
	if ctx.Err() != nil || !o.isCurrent(tok) {
		o.log.Debug("load superseded after fetch", "locator", track.Locator)
		return
	}
	if err != nil {
		o.degrade(tok, "fetch", err)
		return
	}
	o.log.Debug("track fetched", "locator", track.Locator,
		"size", humanize.Bytes(uint64(len(data))))

	if err := o.buffered.Load(ctx, data, track.Locator); err != nil {
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			o.log.Debug("load superseded during decode", "locator", track.Locator)
			return
		}
		o.degrade(tok, "decode", err)
		return
	}
	if ctx.Err() != nil || !o.isCurrent(tok) {
		o.log.Debug("load superseded after decode", "locator", track.Locator)
		return
	}

	o.mu.Lock()
	if o.token != tok {
		o.mu.Unlock()
		return
	}
	o.bufferedReady = true
	if o.phase == PhaseLoading {
		o.phase = PhaseBufferedReady
	}
	o.mu.Unlock()

	o.tryHandoff(tok)
}

// degrade keeps the session on the streaming engine for good. The user
// keeps hearing audio; only the instant-seek upgrade is lost, so nothing
// surfaces beyond a warning and an error event.
func (o *orchestrator) degrade(tok uint64, op string, err error) {
	o.mu.Lock()
	if o.token != tok {
		o.mu.Unlock()
		return
	}
	o.phase = PhaseStreaming
	o.mu.Unlock()

	o.log.Warn("buffered path unavailable, staying on streaming engine",
		"op", op, "err", err)
	o.emitError(op, err)
}
