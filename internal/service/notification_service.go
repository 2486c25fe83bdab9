package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/civigo/citizen-portal/internal/domain"
	"github.com/civigo/citizen-portal/internal/events"
	"github.com/civigo/citizen-portal/internal/repository"
	apperrors "github.com/civigo/citizen-portal/pkg/util"
)

// NotificationService owns the per-user notification feed. Entries are
// created from queue lifecycle events; users only flip the read flag or
// delete.
type NotificationService struct {
	notifications repository.NotificationRepository
	dispatcher    events.Dispatcher
	logger        *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(notifications repository.NotificationRepository, dispatcher events.Dispatcher, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		dispatcher:    dispatcher,
		logger:        logger,
	}
}

// Feed bundles the notification list with its unread count.
type Feed struct {
	Items       []domain.Notification
	UnreadCount int64
}

// ListForUser returns the user's feed, newest first.
func (n *NotificationService) ListForUser(ctx context.Context, userID string) (*Feed, error) {
	items, err := n.notifications.ListByUser(ctx, userID, 100)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	unread, err := n.notifications.CountUnread(ctx, userID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &Feed{Items: items, UnreadCount: unread}, nil
}

// MarkRead flips one notification to read for its owner.
func (n *NotificationService) MarkRead(ctx context.Context, id, userID string) error {
	ok, err := n.notifications.MarkRead(ctx, id, userID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if !ok {
		return apperrors.NewNotFound("notification", nil)
	}
	return nil
}

// MarkAllRead flips every unread notification for the user.
func (n *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	if err := n.notifications.MarkAllRead(ctx, userID); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// Delete removes one notification for its owner.
func (n *NotificationService) Delete(ctx context.Context, id, userID string) error {
	ok, err := n.notifications.Delete(ctx, id, userID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if !ok {
		return apperrors.NewNotFound("notification", nil)
	}
	return nil
}

// RegisterHandlers subscribes to queue events so status changes land in the
// affected citizen's feed.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.handleTicketStatusChanged)
	n.dispatcher.Subscribe(events.EventTicketForwarded, n.handleTicketForwarded)
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCreatedPayload)
	if !ok {
		return nil
	}
	return n.create(ctx, event.UserID, "Ticket issued",
		fmt.Sprintf("Your queue number is %d.", payload.Position))
}

func (n *NotificationService) handleTicketStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketStatusChangedPayload)
	if !ok {
		return nil
	}
	var message string
	switch payload.NewStatus {
	case domain.QueueStatusCalled:
		message = "Your ticket has been called. Please proceed to the counter."
	case domain.QueueStatusServing:
		message = "You are now being served."
	case domain.QueueStatusCompleted:
		message = "Your request has been completed. Thank you."
	case domain.QueueStatusCancelled:
		message = "Your ticket was cancelled."
	case domain.QueueStatusNoShow:
		message = "Your ticket was marked as a no-show."
	default:
		return nil
	}
	return n.create(ctx, event.UserID, "Queue update", message)
}

func (n *NotificationService) handleTicketForwarded(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketForwardedPayload)
	if !ok {
		return nil
	}
	return n.create(ctx, event.UserID, "Ticket forwarded",
		fmt.Sprintf("Your ticket was moved to another queue. New number: %d.", payload.NewPosition))
}

func (n *NotificationService) create(ctx context.Context, userID, title, message string) error {
	notification := &domain.Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
	}
	if err := n.notifications.Create(ctx, notification); err != nil {
		// Feed entries are best-effort; the queue operation already
		// succeeded.
		n.logger.Error("failed to create notification",
			zap.String("user_id", userID), zap.Error(err))
	}
	return nil
}
