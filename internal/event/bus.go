package event

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"gorm.io/gorm"
)

// Handler consumes a published event. Handlers run synchronously on the
// publishing goroutine; a failing or panicking handler is logged and skipped,
// it never affects the publisher or sibling handlers.
type Handler func(ctx context.Context, evt *Event) error

type subscription struct {
	id      int
	handler Handler
}

// Bus is the process-owned event log: it persists events and fans them out to
// subscribed handlers. Construct one Bus per process and inject it into every
// component that publishes or subscribes.
type Bus struct {
	db *gorm.DB

	mu     sync.RWMutex
	nextID int
	subs   map[string][]subscription
}

// NewBus creates an event bus backed by the given database connection.
func NewBus(db *gorm.DB) *Bus {
	return &Bus{
		db:   db,
		subs: make(map[string][]subscription),
	}
}

// Subscribe registers a handler for an event type and returns an unsubscribe
// function. Handlers are invoked in subscription order.
func (b *Bus) Subscribe(eventType string, handler Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subs[eventType] = append(b.subs[eventType], subscription{id: id, handler: handler})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		subs := b.subs[eventType]
		for i, s := range subs {
			if s.id == id {
				b.subs[eventType] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}

// Publish persists the event and synchronously fans it out to subscribers.
// The returned event carries its assigned identity and timestamp.
func (b *Bus) Publish(ctx context.Context, evt *Event) (*Event, error) {
	if _, err := b.PublishInTx(ctx, b.db, evt); err != nil {
		return nil, err
	}
	b.Dispatch(ctx, evt)
	return evt, nil
}

// PublishInTx persists the event within the caller's transaction without
// dispatching it. Callers dispatch after commit so that subscribers only ever
// observe durable events; a rolled-back transaction discards the event row.
func (b *Bus) PublishInTx(ctx context.Context, tx *gorm.DB, evt *Event) (*Event, error) {
	if evt.EventType == "" {
		return nil, fmt.Errorf("event type cannot be empty")
	}
	if evt.AggregateType == "" || evt.AggregateID == "" {
		return nil, fmt.Errorf("event aggregate reference cannot be empty")
	}
	if evt.Data == nil {
		evt.Data = map[string]any{}
	}

	if err := tx.WithContext(ctx).Create(evt).Error; err != nil {
		return nil, fmt.Errorf("failed to persist event %s: %w", evt.EventType, err)
	}
	return evt, nil
}

// Dispatch invokes every handler subscribed to the event's type. Handler
// errors and panics are logged per handler and never propagated.
func (b *Bus) Dispatch(ctx context.Context, evt *Event) {
	b.mu.RLock()
	subs := make([]subscription, len(b.subs[evt.EventType]))
	copy(subs, b.subs[evt.EventType])
	b.mu.RUnlock()

	for _, s := range subs {
		b.invoke(ctx, s, evt)
	}
}

func (b *Bus) invoke(ctx context.Context, s subscription, evt *Event) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("event handler panicked",
				"eventType", evt.EventType,
				"eventID", evt.ID,
				"panic", r)
		}
	}()

	if err := s.handler(ctx, evt); err != nil {
		slog.Error("event handler failed",
			"eventType", evt.EventType,
			"eventID", evt.ID,
			"error", err)
	}
}

// EventsFor returns the ordered event history for an aggregate.
func (b *Bus) EventsFor(ctx context.Context, aggregateType, aggregateID string) ([]Event, error) {
	var events []Event
	result := b.db.WithContext(ctx).
		Where("aggregate_type = ? AND aggregate_id = ?", aggregateType, aggregateID).
		Order("created_at ASC").
		Find(&events)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to retrieve events for %s %s: %w", aggregateType, aggregateID, result.Error)
	}
	return events, nil
}
