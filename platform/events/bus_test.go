package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type testEvent struct {
	BaseEvent
	name string
}

func (e testEvent) EventName() string { return e.name }

func TestPublishSyncRunsAllHandlersAndReturnsError(t *testing.T) {
	bus := NewInMemoryBus(nil)

	var mu sync.Mutex
	var handled []string
	bus.Subscribe("test.event", HandlerFunc(func(_ context.Context, _ Event) error {
		mu.Lock()
		defer mu.Unlock()
		handled = append(handled, "first")
		return nil
	}))
	bus.Subscribe("test.event", HandlerFunc(func(_ context.Context, _ Event) error {
		mu.Lock()
		defer mu.Unlock()
		handled = append(handled, "second")
		return errors.New("handler failed")
	}))

	err := bus.PublishSync(context.Background(), testEvent{BaseEvent: NewBaseEvent(), name: "test.event"})
	if err == nil {
		t.Fatal("expected the handler error to surface")
	}
	if len(handled) != 2 {
		t.Fatalf("expected both handlers to run, got %d", len(handled))
	}
}

func TestPublishOnlyReachesMatchingSubscribers(t *testing.T) {
	bus := NewInMemoryBus(nil)

	matched := make(chan struct{}, 1)
	bus.Subscribe("match", HandlerFunc(func(_ context.Context, _ Event) error {
		matched <- struct{}{}
		return nil
	}))
	bus.Subscribe("other", HandlerFunc(func(_ context.Context, _ Event) error {
		t.Error("handler for a different event must not run")
		return nil
	}))

	bus.Publish(context.Background(), testEvent{BaseEvent: NewBaseEvent(), name: "match"})

	select {
	case <-matched:
	case <-time.After(time.Second):
		t.Fatal("matching handler never ran")
	}
}

func TestPublishSurvivesPanickingHandler(t *testing.T) {
	bus := NewInMemoryBus(nil)

	done := make(chan struct{}, 1)
	bus.Subscribe("boom", HandlerFunc(func(_ context.Context, _ Event) error {
		defer close(done)
		panic("handler bug")
	}))

	bus.Publish(context.Background(), testEvent{BaseEvent: NewBaseEvent(), name: "boom"})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("panicking handler never ran")
	}
}
