package events

import (
	"context"
	stderrors "errors"
	"log/slog"

	"github.com/KirkDiggler/rpg-toolkit/core"
	"github.com/KirkDiggler/rpg-toolkit/events"

	"github.com/KirkDiggler/rpg-advancement/internal/errors"
)

// Notification types
const (
	TypeClassAdvanced  = "advancement.class_changed"
	TypePendingCreated = "advancement.pending_created"
)

// Notification describes a committed advancement outcome
type Notification struct {
	Type            string `json:"type"`
	CharacterID     string `json:"character_id"`
	UserID          string `json:"user_id,omitempty"`
	PreviousClassID string `json:"previous_class_id,omitempty"`
	NewClassID      string `json:"new_class_id,omitempty"`
	Reason          string `json:"reason,omitempty"`
	PendingID       string `json:"pending_id,omitempty"`
	OccurredAt      int64  `json:"occurred_at"`
}

// Notifier delivers notifications after commit. Callers log failures; a
// failed notification never undoes an advancement.
type Notifier interface {
	Notify(ctx context.Context, n *Notification) error
}

// NopNotifier drops every notification
type NopNotifier struct{}

// Notify does nothing
func (NopNotifier) Notify(context.Context, *Notification) error { return nil }

// BusNotifier publishes notifications on an rpg-toolkit event bus so
// in-process listeners can react to class changes
type BusNotifier struct {
	bus events.EventBus
}

// NewBusNotifier creates a notifier over bus
func NewBusNotifier(bus events.EventBus) (*BusNotifier, error) {
	if bus == nil {
		return nil, errors.InvalidArgument("event bus is required")
	}
	return &BusNotifier{bus: bus}, nil
}

// Context keys set on published bus events
const (
	ContextKeyUserID          = "user_id"
	ContextKeyPreviousClassID = "previous_class_id"
	ContextKeyNewClassID      = "new_class_id"
	ContextKeyReason          = "reason"
	ContextKeyPendingID       = "pending_id"
	ContextKeyOccurredAt      = "occurred_at"
)

// Notify publishes n with the character as source and the new class, when
// there is one, as target
func (b *BusNotifier) Notify(ctx context.Context, n *Notification) error {
	if n == nil {
		return errors.InvalidArgument("notification is required")
	}

	var target core.Entity
	if n.NewClassID != "" {
		target = &ClassEntity{ID: n.NewClassID}
	}

	event := events.NewGameEvent(n.Type, &CharacterEntity{ID: n.CharacterID}, target)
	event.Context().Set(ContextKeyUserID, n.UserID)
	event.Context().Set(ContextKeyPreviousClassID, n.PreviousClassID)
	event.Context().Set(ContextKeyNewClassID, n.NewClassID)
	event.Context().Set(ContextKeyReason, n.Reason)
	event.Context().Set(ContextKeyPendingID, n.PendingID)
	event.Context().Set(ContextKeyOccurredAt, n.OccurredAt)

	if err := b.bus.Publish(ctx, event); err != nil {
		return errors.Wrapf(err, "failed to publish %s", n.Type)
	}
	return nil
}

// MultiNotifier fans a notification out to every notifier
type MultiNotifier []Notifier

// Notify calls every notifier and reports all failures together
func (m MultiNotifier) Notify(ctx context.Context, n *Notification) error {
	var errs []error
	for _, notifier := range m {
		if err := notifier.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errors.Wrap(stderrors.Join(errs...), "notification delivery failed")
}

// NotifyAndLog sends n and logs instead of returning a failure
func NotifyAndLog(ctx context.Context, notifier Notifier, n *Notification) {
	if err := notifier.Notify(ctx, n); err != nil {
		slog.WarnContext(ctx, "failed to deliver advancement notification",
			"type", n.Type,
			"character_id", n.CharacterID,
			"error", err)
	}
}
