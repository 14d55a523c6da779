package bus

import (
	"errors"
	"testing"
	"time"
)

type testObserver struct {
	calls     int
	delivered int
	lastErr   error
}

func (o *testObserver) OnDelivered(_ string, handlers int, err error, _ time.Duration) {
	o.calls++
	o.delivered += handlers
	o.lastErr = err
}

func TestBasicPublishSubscribe(t *testing.T) {
	b := New()
	var got any
	_, err := b.Subscribe("vision.target.acquired", func(e Event) error {
		got = e.Data()
		return nil
	})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err = b.Publish(NewEvent("vision.target.acquired", "tester", 42)); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if got != 42 {
		t.Fatalf("handler got %v, want 42", got)
	}
}

func TestDeliveryFollowsSubscriptionOrder(t *testing.T) {
	b := New()
	var order []int
	for i := 0; i < 5; i++ {
		i := i
		_, _ = b.Subscribe("ev", func(Event) error { order = append(order, i); return nil })
	}
	_ = b.Publish(NewEvent("ev", "src", nil))
	for i, v := range order {
		if v != i {
			t.Fatalf("delivery order %v", order)
		}
	}
	if len(order) != 5 {
		t.Fatalf("delivered %d handlers, want 5", len(order))
	}
}

func TestHandlerErrorsAreJoined(t *testing.T) {
	b := New()
	errA, errB := errors.New("a"), errors.New("b")
	_, _ = b.Subscribe("x", func(Event) error { return errA })
	_, _ = b.Subscribe("x", func(Event) error { return errB })

	err := b.Publish(NewEvent("x", "src", nil))
	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Fatalf("expected joined error, got %v", err)
	}

	err = b.PublishBatch(NewEvent("x", "src", nil), NewEvent("y", "src", nil))
	if !errors.Is(err, errA) {
		t.Fatalf("batch error lost: %v", err)
	}
}

func TestCancelStopsDelivery(t *testing.T) {
	b := New()
	count := 0
	sub, _ := b.Subscribe("ev", func(Event) error { count++; return nil })
	_ = b.Publish(NewEvent("ev", "src", nil))
	if err := b.Unsubscribe(sub); err != nil {
		t.Fatalf("unsubscribe: %v", err)
	}
	if err := sub.Cancel(); err != nil {
		t.Fatalf("second cancel: %v", err)
	}
	_ = b.Publish(NewEvent("ev", "src", nil))
	if count != 1 || sub.IsActive() {
		t.Fatalf("count=%d active=%v", count, sub.IsActive())
	}
	if err := b.Unsubscribe(nil); err != nil {
		t.Fatalf("nil unsubscribe: %v", err)
	}
}

func TestNilHandlerRejected(t *testing.T) {
	if _, err := New().Subscribe("ev", nil); !errors.Is(err, ErrNilHandler) {
		t.Fatalf("expected ErrNilHandler, got %v", err)
	}
}

func TestObserverMetricsOptional(t *testing.T) {
	b := New()
	_, _ = b.Subscribe("e", func(Event) error { return nil })
	_ = b.Publish(NewEvent("e", "s", nil))
	if m := b.GetMetrics(); m.Published != 0 {
		t.Fatalf("metrics should stay zero without observers: %+v", m)
	}

	obs := &testObserver{}
	b.AddObserver(obs)
	_ = b.Publish(NewEvent("e", "s", nil))
	m := b.GetMetrics()
	if m.Published != 1 || m.DeliveredHandlers != 1 || m.SubscribersActive != 1 {
		t.Fatalf("unexpected metrics: %+v", m)
	}
	if obs.calls != 1 || obs.delivered != 1 {
		t.Fatalf("observer not called: %+v", obs)
	}

	b.RemoveObserver(obs)
	_ = b.Publish(NewEvent("e", "s", nil))
	if obs.calls != 1 {
		t.Fatalf("removed observer still called")
	}
}
