package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/support-relay/internal/events"
)

// Notifier logs domain events emitted by the relay services.
type Notifier struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewNotifier creates the service.
func NewNotifier(dispatcher events.Dispatcher, logger *zap.Logger) *Notifier {
	return &Notifier{dispatcher: dispatcher, logger: logger}
}

// RegisterHandlers subscribes to events.
func (n *Notifier) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventThreadBound, n.handleThreadBound)
	n.dispatcher.Subscribe(events.EventMessageRelayed, n.handleMessageRelayed)
	n.dispatcher.Subscribe(events.EventBatchFlushed, n.handleBatchFlushed)
	n.dispatcher.Subscribe(events.EventAdminAdded, n.handleAdminAdded)
}

func (n *Notifier) handleTicketCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketCreated", zap.Int64("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	return nil
}

func (n *Notifier) handleThreadBound(ctx context.Context, event events.Event) error {
	n.logger.Info("ThreadBound", zap.Int64("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	return nil
}

func (n *Notifier) handleMessageRelayed(ctx context.Context, event events.Event) error {
	n.logger.Info("MessageRelayed", zap.Int64("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	return nil
}

func (n *Notifier) handleBatchFlushed(ctx context.Context, event events.Event) error {
	n.logger.Info("BatchFlushed", zap.Int64("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	return nil
}

func (n *Notifier) handleAdminAdded(ctx context.Context, event events.Event) error {
	n.logger.Info("AdminAdded", zap.Any("payload", event.Payload))
	return nil
}
