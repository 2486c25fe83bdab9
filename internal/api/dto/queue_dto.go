package dto

import (
	"time"

	"github.com/civigo/citizen-portal/internal/domain"
)

// TakeTicketRequest payload.
type TakeTicketRequest struct {
	ServiceID string `json:"service_id"`
}

// UpdateQueueStatusRequest payload.
type UpdateQueueStatusRequest struct {
	Status domain.QueueStatus `json:"status"`
}

// ForwardTicketRequest payload.
type ForwardTicketRequest struct {
	TargetServiceID string `json:"target_service_id"`
}

// RegisterWalkInRequest payload. Either user_id or an inline identity.
type RegisterWalkInRequest struct {
	UserID      *string `json:"user_id,omitempty"`
	Name        string  `json:"name,omitempty"`
	PhoneNumber string  `json:"phone_number,omitempty"`
	ServiceID   string  `json:"service_id"`
}

// TicketResponse represents a queue ticket.
type TicketResponse struct {
	ID          string             `json:"id"`
	UserID      string             `json:"user_id"`
	ServiceID   string             `json:"service_id"`
	SectorID    string             `json:"sector_id"`
	Status      domain.QueueStatus `json:"status"`
	Position    int64              `json:"position"`
	ServedBy    *string            `json:"served_by,omitempty"`
	ForwardedTo *string            `json:"forwarded_to,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// NewTicketResponse maps a domain ticket.
func NewTicketResponse(t *domain.QueueTicket) TicketResponse {
	return TicketResponse{
		ID:          t.ID,
		UserID:      t.UserID,
		ServiceID:   t.ServiceID,
		SectorID:    t.SectorID,
		Status:      t.Status,
		Position:    t.Position,
		ServedBy:    t.ServedBy,
		ForwardedTo: t.ForwardedTo,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// NewTicketResponses maps a slice of domain tickets.
func NewTicketResponses(tickets []domain.QueueTicket) []TicketResponse {
	items := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, NewTicketResponse(&tickets[i]))
	}
	return items
}
