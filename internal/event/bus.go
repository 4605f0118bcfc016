package event

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// Handler processes one event payload.  Handlers must tolerate
// out-of-order side effects: a handler reacting to order.created cannot
// assume that reservation.created's other subscribers have finished.  A
// handler error is logged and isolated; it never reaches the publisher
// and never rolls back the state change that triggered the event.
type Handler func(ctx context.Context, payload any) error

type subscriber struct {
	name    string
	handler Handler
}

// Bus is the in-process domain event dispatcher.  Every subscriber for a
// published type runs in its own goroutine with panic recovery, so one
// failing handler cannot starve its siblings.  Delivery is at-most-once
// and not durable; the RabbitMQ relay forwards terminal events to
// external sinks durably.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string][]subscriber
	wg          sync.WaitGroup
	log         *logrus.Logger
}

// NewBus returns an empty bus logging through the given logger.
func NewBus(log *logrus.Logger) *Bus {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Bus{
		subscribers: make(map[string][]subscriber),
		log:         log,
	}
}

// Subscribe registers a named handler for an event type.  The name is
// used only for logging.  Subscribe is not safe to call concurrently
// with Publish during startup wiring; register everything before
// serving traffic.
func (b *Bus) Subscribe(eventType, name string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], subscriber{name: name, handler: h})
	b.log.WithFields(logrus.Fields{"event": eventType, "handler": name}).Debug("subscribed handler")
}

// Publish dispatches the payload to every subscriber of eventType.  Each
// handler runs in its own goroutine; Publish returns immediately without
// waiting for handlers.  Cascading publishes from inside handlers are
// dispatched independently, so no ordering is guaranteed across
// publishes beyond causal dependency.
func (b *Bus) Publish(ctx context.Context, eventType string, payload any) {
	b.mu.RLock()
	subs := b.subscribers[eventType]
	b.mu.RUnlock()

	if len(subs) == 0 {
		b.log.WithField("event", eventType).Warn("no handlers registered for event")
		return
	}

	for _, s := range subs {
		b.wg.Add(1)
		go b.invoke(ctx, eventType, s, payload)
	}
}

func (b *Bus) invoke(ctx context.Context, eventType string, s subscriber, payload any) {
	defer b.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			b.log.WithFields(logrus.Fields{
				"event":   eventType,
				"handler": s.name,
				"panic":   r,
			}).Error("event handler panicked")
		}
	}()
	if err := s.handler(ctx, payload); err != nil {
		b.log.WithFields(logrus.Fields{
			"event":   eventType,
			"handler": s.name,
			"payload": payload,
		}).WithError(err).Error("event handler failed")
	}
}

// Wait blocks until all in-flight handlers, including those spawned by
// cascading publishes, have returned.  Used for graceful shutdown and by
// tests that need the fan-out to settle.
func (b *Bus) Wait() {
	b.wg.Wait()
}
