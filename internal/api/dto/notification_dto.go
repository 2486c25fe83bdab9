package dto

import (
	"time"

	"github.com/civigo/citizen-portal/internal/domain"
)

// NotificationResponse represents one feed entry.
type NotificationResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// NewNotificationResponses maps a slice of domain notifications.
func NewNotificationResponses(items []domain.Notification) []NotificationResponse {
	result := make([]NotificationResponse, 0, len(items))
	for _, n := range items {
		result = append(result, NotificationResponse{
			ID:        n.ID,
			Title:     n.Title,
			Message:   n.Message,
			IsRead:    n.IsRead,
			CreatedAt: n.CreatedAt,
		})
	}
	return result
}
