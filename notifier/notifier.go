// Package notifier broadcasts lifecycle events to connected clients and
// external brokers. Delivery is best effort: at most once, no acknowledgment.
package notifier

import (
	"context"
	"errors"
	"time"
)

const (
	OrderNew       = "order:new"
	OrderUpdated   = "order:updated"
	OrderConfirmed = "order:confirmed"
	OrderClaimed   = "order:claimed"
	OrderReleased  = "order:released"

	CallNew       = "call:new"
	CallClaimed   = "call:claimed"
	CallReleased  = "call:released"
	CallCompleted = "call:completed"

	TableUpdated    = "table:updated"
	MenuUpdated     = "menu:updated"
	SettingsUpdated = "settings:updated"
)

type Event struct {
	Name    string      `json:"event"`
	Payload interface{} `json:"payload"`
	At      time.Time   `json:"at"`
}

func NewEvent(name string, payload interface{}) Event {
	return Event{Name: name, Payload: payload, At: time.Now().UTC()}
}

// Notifier is a one-way event sink
type Notifier interface {
	Publish(ctx context.Context, event Event) error
}

// Fanout publishes every event to all sinks and reports the joined failures
type Fanout []Notifier

func (f Fanout) Publish(ctx context.Context, event Event) error {
	var errs []error
	for _, n := range f {
		if n == nil {
			continue
		}
		if err := n.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Discard drops every event
type Discard struct{}

func (Discard) Publish(context.Context, Event) error { return nil }
