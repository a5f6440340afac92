package playback

import (
	"testing"
	"time"
)

func TestSubscription_ReceivesEvents(t *testing.T) {
	s := newSubscription()

	s.sendEngine(EngineChange{Engine: EngineBuffered})
	s.sendPosition(PositionChange{Position: 5 * time.Second})

	select {
	case e := <-s.EngineChanged:
		if e.Engine != EngineBuffered {
			t.Errorf("engine = %v, want Buffered", e.Engine)
		}
	default:
		t.Fatal("no engine event buffered")
	}

	select {
	case e := <-s.PositionChanged:
		if e.Position != 5*time.Second {
			t.Errorf("position = %v, want 5s", e.Position)
		}
	default:
		t.Fatal("no position event buffered")
	}
}

func TestSubscription_DropsWhenBufferFull(t *testing.T) {
	s := newSubscription()

	// Overfill: sends must not block even with no reader.
	for i := 0; i < eventBufferSize*2; i++ {
		s.sendPosition(PositionChange{Position: time.Duration(i) * time.Second})
	}

	count := 0
	for {
		select {
		case <-s.PositionChanged:
			count++
			continue
		default:
		}
		break
	}
	if count != eventBufferSize {
		t.Errorf("buffered events = %d, want %d", count, eventBufferSize)
	}
}

func TestSubscription_CloseSignalsDone(t *testing.T) {
	s := newSubscription()
	s.close()

	select {
	case <-s.Done:
	default:
		t.Error("Done not signalled after close")
	}
}
