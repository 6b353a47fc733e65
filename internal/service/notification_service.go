package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/joshwa2003/hr-helpdesk/internal/config"
	"github.com/joshwa2003/hr-helpdesk/internal/events"
)

// NotificationService forwards domain events to the notification
// collaborators. Delivery is fire-and-forget: failures are logged, never
// surfaced to the transition that emitted the event.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleEvent)
	n.dispatcher.Subscribe(events.EventTicketAssigned, n.handleEvent)
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.handleEvent)
	n.dispatcher.Subscribe(events.EventTicketEscalated, n.handleEscalated)
	n.dispatcher.Subscribe(events.EventTicketResolved, n.handleEvent)
	n.dispatcher.Subscribe(events.EventTicketConfirmed, n.handleEvent)
	n.dispatcher.Subscribe(events.EventTicketReopened, n.handleEvent)
	n.dispatcher.Subscribe(events.EventTicketClosed, n.handleEvent)
}

func (n *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	n.logger.Info("notify",
		zap.String("event_type", string(event.Type)),
		zap.String("ticket_id", event.TicketID),
		zap.Any("payload", event.Payload))
	n.sendEmailStub(ctx, event)
	n.sendWebhookStub(ctx, event)
	return nil
}

// handleEscalated logs escalations at warn level so breaches stand out in
// the stream.
func (n *NotificationService) handleEscalated(ctx context.Context, event events.Event) error {
	n.logger.Warn("ticket escalated",
		zap.String("ticket_id", event.TicketID),
		zap.Any("payload", event.Payload))
	n.sendEmailStub(ctx, event)
	n.sendWebhookStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("ticket_id", event.TicketID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("ticket_id", event.TicketID),
		zap.String("event_type", string(event.Type)))
}
