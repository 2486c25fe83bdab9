package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/civigo/citizen-portal/internal/api/dto"
	"github.com/civigo/citizen-portal/internal/service"
)

// NotificationsHandler exposes the per-user notification feed.
type NotificationsHandler struct {
	notifications *service.NotificationService
}

// NewNotificationsHandler constructs handler.
func NewNotificationsHandler(notificationService *service.NotificationService) *NotificationsHandler {
	return &NotificationsHandler{notifications: notificationService}
}

// List handles GET /notifications.
func (h *NotificationsHandler) List(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	feed, err := h.notifications.ListForUser(c.Context(), principal.UserID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success":     true,
		"data":        dto.NewNotificationResponses(feed.Items),
		"unreadCount": feed.UnreadCount,
	})
}

// MarkRead handles PATCH /notifications/:id/read.
func (h *NotificationsHandler) MarkRead(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	if err := h.notifications.MarkRead(c.Context(), c.Params("id"), principal.UserID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}

// MarkAllRead handles PATCH /notifications/read-all.
func (h *NotificationsHandler) MarkAllRead(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	if err := h.notifications.MarkAllRead(c.Context(), principal.UserID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}

// Delete handles DELETE /notifications/:id.
func (h *NotificationsHandler) Delete(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	if err := h.notifications.Delete(c.Context(), c.Params("id"), principal.UserID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}
