package events

import (
	"time"

	"github.com/civigo/citizen-portal/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketForwarded     EventType = "ticket_forwarded"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	UserID string      `json:"user_id"`
	Role   domain.Role `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	UserID    string      `json:"user_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	ServiceID string `json:"service_id"`
	SectorID  string `json:"sector_id"`
	Position  int64  `json:"position"`
	WalkIn    bool   `json:"walk_in"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.QueueStatus `json:"old_status"`
	NewStatus domain.QueueStatus `json:"new_status"`
}

// TicketForwardedPayload payload.
type TicketForwardedPayload struct {
	FromServiceID string `json:"from_service_id"`
	ToServiceID   string `json:"to_service_id"`
	NewTicketID   string `json:"new_ticket_id"`
	NewPosition   int64  `json:"new_position"`
}
