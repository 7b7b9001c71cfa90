// Package notify is the process-wide publish/subscribe channel between
// the task store and the presentation layer. Events are delivered
// synchronously, in subscription order, only after the triggering
// transaction has committed. The notifier carries no business data of
// its own, only dispatch lists.
package notify

import (
	"sync"

	"github.com/charmbracelet/log"

	"github.com/soulplanner/soulplanner/internal/model"
)

// Kind identifies what changed.
type Kind string

const (
	TaskCreated    Kind = "task_created"
	TaskUpdated    Kind = "task_updated"
	TaskDeleted    Kind = "task_deleted"
	ProjectChanged Kind = "project_changed"
)

// Event describes one committed mutation.
type Event struct {
	Kind      Kind
	TaskID    string
	ProjectID string

	// Task carries the post-mutation state for created and updated
	// tasks; nil for deletions.
	Task *model.Task

	// Project carries the post-mutation state for project events; nil
	// after a hard delete.
	Project *model.Project
}

// Handler reacts to one event. Handlers run on the publisher's
// goroutine and should return quickly.
type Handler func(Event)

// Notifier dispatches events to registered handlers. The zero value is
// not usable; construct with New. Lifecycle is process-duration.
type Notifier struct {
	mu     sync.Mutex
	subs   map[Kind][]Handler
	logger *log.Logger
}

// New returns a Notifier that reports handler panics to logger.
func New(logger *log.Logger) *Notifier {
	return &Notifier{
		subs:   make(map[Kind][]Handler),
		logger: logger,
	}
}

// Subscribe registers h for events of the given kind. Handlers are
// invoked in subscription order.
func (n *Notifier) Subscribe(kind Kind, h Handler) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.subs[kind] = append(n.subs[kind], h)
}

// Publish delivers e to every subscriber of its kind, synchronously and
// in subscription order. A panicking handler is caught and logged;
// delivery to the remaining handlers continues.
func (n *Notifier) Publish(e Event) {
	n.mu.Lock()
	handlers := make([]Handler, len(n.subs[e.Kind]))
	copy(handlers, n.subs[e.Kind])
	n.mu.Unlock()

	for _, h := range handlers {
		n.invoke(h, e)
	}
}

func (n *Notifier) invoke(h Handler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			n.logger.Error("event handler panicked", "kind", e.Kind, "panic", r)
		}
	}()
	h(e)
}
