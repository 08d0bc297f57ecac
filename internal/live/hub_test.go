package live

import (
	"sync"
	"testing"
	"time"
)

func TestPublishReachesAllSessionSubscribers(t *testing.T) {
	t.Parallel()

	h := NewHub(nil)
	ch1, cancel1 := h.Subscribe("s1")
	defer cancel1()
	ch2, cancel2 := h.Subscribe("s1")
	defer cancel2()
	other, cancelOther := h.Subscribe("s2")
	defer cancelOther()

	h.Publish(Event{Type: EventTurn, SessionID: "s1"})

	for i, ch := range []<-chan Event{ch1, ch2} {
		select {
		case ev := <-ch:
			if ev.Type != EventTurn {
				t.Errorf("subscriber %d got type %q", i, ev.Type)
			}
			if ev.At.IsZero() {
				t.Errorf("subscriber %d event missing timestamp", i)
			}
		case <-time.After(time.Second):
			t.Fatalf("subscriber %d never received the event", i)
		}
	}

	select {
	case ev := <-other:
		t.Fatalf("wrong-session subscriber received %+v", ev)
	default:
	}
}

func TestCancelClosesChannelOnce(t *testing.T) {
	t.Parallel()

	h := NewHub(nil)
	ch, cancel := h.Subscribe("s1")
	cancel()
	cancel() // must be idempotent

	if _, open := <-ch; open {
		t.Error("channel still open after cancel")
	}

	// Publishing after cancel must not panic.
	h.Publish(Event{Type: EventTurn, SessionID: "s1"})
}

// Cancel must never close a channel out from under an in-flight publish.
// A steady publisher races against subscribers that attach and detach; a
// send on a closed channel panics, so this fails loudly if the locking
// regresses.
func TestPublishDuringCancelDoesNotPanic(t *testing.T) {
	t.Parallel()

	h := NewHub(nil)
	stop := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				h.Publish(Event{Type: EventTypingStarted, SessionID: "s1"})
			}
		}
	}()

	for i := 0; i < 500; i++ {
		_, cancel := h.Subscribe("s1")
		cancel()
	}

	close(stop)
	wg.Wait()
}

func TestSlowSubscriberDoesNotBlockPublish(t *testing.T) {
	t.Parallel()

	h := NewHub(nil)
	_, cancel := h.Subscribe("s1")
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer*3; i++ {
			h.Publish(Event{Type: EventTypingStarted, SessionID: "s1"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on an unread subscriber")
	}
}

func TestTypingNotifierEvents(t *testing.T) {
	t.Parallel()

	h := NewHub(nil)
	ch, cancel := h.Subscribe("s1")
	defer cancel()

	h.TypingStarted("s1")
	h.TypingStopped("s1")

	want := []string{EventTypingStarted, EventTypingStopped}
	for _, w := range want {
		select {
		case ev := <-ch:
			if ev.Type != w {
				t.Errorf("event type = %q, want %q", ev.Type, w)
			}
		case <-time.After(time.Second):
			t.Fatalf("missing %s event", w)
		}
	}
}
