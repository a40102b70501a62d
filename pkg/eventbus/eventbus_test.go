package eventbus

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type testEvent struct {
	name    string
	payload string
}

func (e testEvent) Name() string { return e.name }

func TestPublishDeliversToSubscriber(t *testing.T) {
	bus := New(zap.NewNop())

	received := make(chan Event, 1)
	bus.Subscribe("lead.created", func(ctx context.Context, event Event) error {
		received <- event
		return nil
	})

	bus.Publish(context.Background(), testEvent{name: "lead.created", payload: "42"})

	select {
	case event := <-received:
		assert.Equal(t, "42", event.(testEvent).payload)
	case <-time.After(2 * time.Second):
		t.Fatal("слушатель не получил событие")
	}
}

func TestPublishSkipsOtherEvents(t *testing.T) {
	bus := New(zap.NewNop())

	received := make(chan Event, 1)
	bus.Subscribe("payment.succeeded", func(ctx context.Context, event Event) error {
		received <- event
		return nil
	})

	bus.Publish(context.Background(), testEvent{name: "lead.created"})

	select {
	case <-received:
		t.Fatal("слушатель получил чужое событие")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestPublishFansOut(t *testing.T) {
	bus := New(zap.NewNop())

	received := make(chan struct{}, 2)
	for i := 0; i < 2; i++ {
		bus.Subscribe("payment.succeeded", func(ctx context.Context, event Event) error {
			received <- struct{}{}
			return nil
		})
	}

	bus.Publish(context.Background(), testEvent{name: "payment.succeeded"})

	for i := 0; i < 2; i++ {
		select {
		case <-received:
		case <-time.After(2 * time.Second):
			t.Fatalf("слушатель %d не получил событие", i)
		}
	}
}

func TestListenerErrorDoesNotAffectOthers(t *testing.T) {
	bus := New(zap.NewNop())

	received := make(chan struct{}, 1)
	bus.Subscribe("crm.synced", func(ctx context.Context, event Event) error {
		return assert.AnError
	})
	bus.Subscribe("crm.synced", func(ctx context.Context, event Event) error {
		received <- struct{}{}
		return nil
	})

	bus.Publish(context.Background(), testEvent{name: "crm.synced"})

	select {
	case <-received:
	case <-time.After(2 * time.Second):
		t.Fatal("второй слушатель не получил событие")
	}
}
