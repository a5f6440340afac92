package playback

// tryHandoff transfers output ownership from the streaming engine to the
// buffered engine. It can be triggered twice for the same session, by the
// load task's completion and by a user seek landing in the same instant,
// so the guard admits exactly one caller; the loser returns silently,
// which is a normal outcome, not an error.
//
// Every step re-validates the session token first: a continuation whose
// session has been superseded must not touch the engines on the new
// session's behalf.
func (o *orchestrator) tryHandoff(tok uint64) {
	o.mu.Lock()
	if o.token != tok || !o.bufferedReady || o.switching || o.handoffDone ||
		o.activeEngine != EngineStreaming {
		o.mu.Unlock()
		return
	}
	o.switching = true
	o.handoffDone = true
	o.phase = PhaseSwitching
	pending := o.pendingSeek
	playing := o.playing
	volume := o.volume
	o.mu.Unlock()

	// Step 1: the streaming engine's position is the best estimate of
	// where the user currently is.
	pos, err := o.streaming.Position()
	if err != nil {
		o.log.Debug("streaming position unavailable, assuming start", "err", err)
		pos = 0
	}
	if !o.isCurrent(tok) {
		return
	}

	// Step 2: release the device. The buffered engine must never start
	// while the streaming engine still holds output.
	if err := o.streaming.Stop(); err != nil {
		o.abortHandoff(tok, "stop streaming", err)
		return
	}
	if !o.isCurrent(tok) {
		return
	}

	// Step 3: a pending seek wins over the organically reached position.
	target := pos
	if pending != nil {
		target = *pending
	}

	// Step 4: position the buffered engine and, if the session was
	// playing, start it. Volume is re-applied first so a level set
	// during the streaming phase is not lost in the transfer.
	o.buffered.SetVolume(volume)
	if err := o.buffered.SeekTo(target); err != nil {
		o.abortHandoff(tok, "seek buffered", err)
		return
	}
	if !o.isCurrent(tok) {
		o.buffered.Stop()
		return
	}
	if playing {
		if err := o.buffered.Play(); err != nil {
			o.abortHandoff(tok, "start buffered", err)
			return
		}
	}

	// Step 5: publish the new owner. A seek issued while the switch was
	// in flight parked a fresh pending value after the step 3 snapshot;
	// re-read it here so it is applied instead of silently dropped.
	o.mu.Lock()
	if o.token != tok {
		o.mu.Unlock()
		// Superseded mid-switch; do not leave a stale output live.
		o.buffered.Stop()
		return
	}
	late := o.pendingSeek
	o.activeEngine = EngineBuffered
	o.pendingSeek = nil
	o.switching = false
	o.phase = PhaseBufferedActive
	o.mu.Unlock()

	if late != nil && late != pending {
		if err := o.buffered.SeekTo(*late); err != nil {
			o.log.Warn("apply seek parked during switch", "err", err)
		} else {
			o.emitPosition(*late)
		}
	}

	o.emitEngine(EngineBuffered)
}

// abortHandoff leaves the session on the streaming engine permanently.
// The streaming path may or may not still be audible depending on which
// step failed; either way the orchestrator keeps reporting Streaming and
// never retries the switch for this session.
func (o *orchestrator) abortHandoff(tok uint64, op string, err error) {
	o.buffered.Stop()

	o.mu.Lock()
	if o.token != tok {
		o.mu.Unlock()
		return
	}
	o.switching = false
	o.bufferedReady = false
	o.phase = PhaseStreaming
	o.mu.Unlock()

	o.log.Warn("handoff failed, staying on streaming engine", "op", op, "err", err)
	o.emitError("handoff", err)
}
