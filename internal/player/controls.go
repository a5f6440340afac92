package player

import "time"

// Play starts playback from the last recorded offset. The output node is
// always torn down and recreated, so calling Play while already playing
// restarts cleanly instead of double-starting.
func (p *Player) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.buf == nil {
		return ErrNotLoaded
	}
	if p.state == Playing {
		p.offset = p.positionLocked()
	}
	p.startLocked()
	return nil
}

// Pause pauses playback, freezing the position reference.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != Playing || p.ctrl == nil {
		return
	}
	p.offset = p.positionLocked()
	p.out.Lock()
	p.ctrl.Paused = true
	p.out.Unlock()
	p.state = Paused
}

// Resume resumes paused playback.
func (p *Player) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != Paused || p.ctrl == nil {
		return
	}
	p.out.Lock()
	p.ctrl.Paused = false
	p.out.Unlock()
	p.state = Playing
	p.startedAt = p.clk.Now()
}

// Stop releases the output connection. The recorded offset survives, so a
// later Play resumes where playback left off.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == Stopped {
		return
	}
	p.offset = p.positionLocked()
	p.teardownLocked()
	p.state = Stopped
}

// SeekTo moves to an absolute position. This is O(1): the sample buffer is
// already in memory, so seeking only restarts the output streamer at a new
// sample index. If the player was playing it keeps playing from the new
// position; a paused or stopped player just records the offset.
func (p *Player) SeekTo(position time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.buf == nil {
		return ErrNotLoaded
	}
	if position < 0 {
		position = 0
	}
	if position > p.duration {
		position = p.duration
	}

	wasPlaying := p.state == Playing
	p.teardownLocked()
	p.offset = position
	if wasPlaying {
		p.startLocked()
	}
	return nil
}

// State returns the transport state.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Position returns the playback position, derived from the monotonic
// clock reference captured at the last play or seek.
func (p *Player) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.positionLocked()
}

func (p *Player) positionLocked() time.Duration {
	if p.state != Playing {
		return p.offset
	}
	pos := p.offset + p.clk.Now().Sub(p.startedAt)
	if pos > p.duration {
		return p.duration
	}
	return pos
}
