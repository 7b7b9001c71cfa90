package notify

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
)

func newTestNotifier() *Notifier {
	return New(log.New(io.Discard))
}

func TestPublishInSubscriptionOrder(t *testing.T) {
	n := newTestNotifier()

	var order []int
	for i := 0; i < 3; i++ {
		i := i
		n.Subscribe(TaskCreated, func(Event) { order = append(order, i) })
	}

	n.Publish(Event{Kind: TaskCreated, TaskID: "t1"})

	if len(order) != 3 || order[0] != 0 || order[1] != 1 || order[2] != 2 {
		t.Errorf("handlers ran out of order: %v", order)
	}
}

func TestPublishOnlyMatchingKind(t *testing.T) {
	n := newTestNotifier()

	var created, deleted int
	n.Subscribe(TaskCreated, func(Event) { created++ })
	n.Subscribe(TaskDeleted, func(Event) { deleted++ })

	n.Publish(Event{Kind: TaskCreated})
	n.Publish(Event{Kind: TaskCreated})
	n.Publish(Event{Kind: ProjectChanged})

	if created != 2 || deleted != 0 {
		t.Errorf("created=%d deleted=%d, want 2/0", created, deleted)
	}
}

func TestHandlerPanicDoesNotStopDelivery(t *testing.T) {
	n := newTestNotifier()

	var reached bool
	n.Subscribe(TaskUpdated, func(Event) { panic("boom") })
	n.Subscribe(TaskUpdated, func(Event) { reached = true })

	n.Publish(Event{Kind: TaskUpdated, TaskID: "t1"})

	if !reached {
		t.Error("a panicking handler must not block later subscribers")
	}
}

func TestPublishWithoutSubscribers(t *testing.T) {
	n := newTestNotifier()
	// Must not panic or block.
	n.Publish(Event{Kind: TaskDeleted, TaskID: "t1"})
}

func TestSubscribeDuringDispatchDoesNotAffectCurrentEvent(t *testing.T) {
	n := newTestNotifier()

	var late int
	n.Subscribe(TaskCreated, func(Event) {
		n.Subscribe(TaskCreated, func(Event) { late++ })
	})

	n.Publish(Event{Kind: TaskCreated})
	if late != 0 {
		t.Errorf("handler added mid-dispatch ran for the same event")
	}

	n.Publish(Event{Kind: TaskCreated})
	if late != 1 {
		t.Errorf("handler added mid-dispatch should run for later events, ran %d times", late)
	}
}
