package playback

const eventBufferSize = 16

// Subscription provides event channels for a subscriber. The orchestrator
// never blocks on a slow consumer: sends are buffered and dropped when the
// buffer is full.
type Subscription struct {
	EngineChanged   <-chan EngineChange
	PositionChanged <-chan PositionChange
	TrackEnded      <-chan TrackEnded
	Progress        <-chan LoadingProgress
	Error           <-chan ErrorEvent
	Done            <-chan struct{}

	// Internal write channels
	engineCh   chan EngineChange
	positionCh chan PositionChange
	endedCh    chan TrackEnded
	progressCh chan LoadingProgress
	errorCh    chan ErrorEvent
	doneCh     chan struct{}
}

// newSubscription creates a new subscription with buffered channels.
func newSubscription() *Subscription {
	s := &Subscription{
		engineCh:   make(chan EngineChange, eventBufferSize),
		positionCh: make(chan PositionChange, eventBufferSize),
		endedCh:    make(chan TrackEnded, eventBufferSize),
		progressCh: make(chan LoadingProgress, eventBufferSize),
		errorCh:    make(chan ErrorEvent, eventBufferSize),
		doneCh:     make(chan struct{}),
	}
	s.EngineChanged = s.engineCh
	s.PositionChanged = s.positionCh
	s.TrackEnded = s.endedCh
	s.Progress = s.progressCh
	s.Error = s.errorCh
	s.Done = s.doneCh
	return s
}

// close signals subscribers to stop by closing doneCh.
func (s *Subscription) close() {
	close(s.doneCh)
}

func (s *Subscription) sendEngine(e EngineChange) {
	select {
	case s.engineCh <- e:
	default:
		// Drop if buffer full
	}
}

func (s *Subscription) sendPosition(e PositionChange) {
	select {
	case s.positionCh <- e:
	default:
	}
}

func (s *Subscription) sendEnded(e TrackEnded) {
	select {
	case s.endedCh <- e:
	default:
	}
}

func (s *Subscription) sendProgress(e LoadingProgress) {
	select {
	case s.progressCh <- e:
	default:
	}
}

func (s *Subscription) sendError(e ErrorEvent) {
	select {
	case s.errorCh <- e:
	default:
	}
}
