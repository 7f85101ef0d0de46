package services

import (
	"context"
	"log/slog"
)

// Ledger change actions.
const (
	ActionCreated   = "created"
	ActionUpdated   = "updated"
	ActionDeleted   = "deleted"
	ActionRecurring = "recurring"
)

// EventPublisher announces a ledger change to other processes.
type EventPublisher interface {
	PublishLedgerChanged(ctx context.Context, entity string, id int64, action string) error
}

// Notifier fans a ledger change out to the event publisher and to local
// hooks such as cache invalidation. A nil Notifier is valid and does nothing.
type Notifier struct {
	publisher EventPublisher
	hooks     []func()
}

func NewNotifier(publisher EventPublisher, hooks ...func()) *Notifier {
	return &Notifier{publisher: publisher, hooks: hooks}
}

// Changed never fails the caller: the change is already persisted.
func (n *Notifier) Changed(ctx context.Context, entity string, id int64, action string) {
	if n == nil {
		return
	}
	for _, h := range n.hooks {
		h()
	}
	if n.publisher == nil {
		slog.DebugContext(ctx, "Event publisher not available, skipping change event",
			"entity", entity, "id", id)
		return
	}
	if err := n.publisher.PublishLedgerChanged(ctx, entity, id, action); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger change",
			"entity", entity,
			"id", id,
			"action", action,
			"error", err)
	}
}
