package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Handler reacts to one lifecycle event.
type Handler func(context.Context, Event) error

// Dispatcher fans lifecycle events out to subscribers.
type Dispatcher interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType EventType, handler Handler)
}

// HandlerError reports which subscriber failed for which event.
type HandlerError struct {
	EventType EventType
	Index     int
	Err       error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("%s handler %d: %v", e.EventType, e.Index, e.Err)
}

func (e *HandlerError) Unwrap() error { return e.Err }

type inMemoryDispatcher struct {
	mu     sync.RWMutex
	routes map[EventType][]Handler
}

// NewInMemoryDispatcher creates a dispatcher that runs handlers on the
// publishing goroutine, in subscription order.
func NewInMemoryDispatcher() Dispatcher {
	return &inMemoryDispatcher{routes: make(map[EventType][]Handler)}
}

// Publish runs every subscriber of event.Type. Failures and panics of one
// subscriber are collected and do not stop the rest.
func (d *inMemoryDispatcher) Publish(ctx context.Context, event Event) error {
	d.mu.RLock()
	subscribers := d.routes[event.Type]
	d.mu.RUnlock()

	var errs []error
	for i, handler := range subscribers {
		if err := invoke(ctx, handler, event); err != nil {
			errs = append(errs, &HandlerError{EventType: event.Type, Index: i, Err: err})
		}
	}
	return errors.Join(errs...)
}

func (d *inMemoryDispatcher) Subscribe(eventType EventType, handler Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	// Copy on write so Publish can iterate a snapshot without holding the lock.
	next := make([]Handler, len(d.routes[eventType]), len(d.routes[eventType])+1)
	copy(next, d.routes[eventType])
	d.routes[eventType] = append(next, handler)
}

func invoke(ctx context.Context, handler Handler, event Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return handler(ctx, event)
}
