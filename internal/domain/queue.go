package domain

import "time"

// QueueStatus enumerates lifecycle states for queue tickets.
type QueueStatus string

const (
	QueueStatusWaiting   QueueStatus = "WAITING"
	QueueStatusCalled    QueueStatus = "CALLED"
	QueueStatusServing   QueueStatus = "SERVING"
	QueueStatusForwarded QueueStatus = "FORWARDED"
	QueueStatusCompleted QueueStatus = "COMPLETED"
	QueueStatusCancelled QueueStatus = "CANCELLED"
	QueueStatusNoShow    QueueStatus = "NO_SHOW"
)

// ActiveStatuses are the states in which a ticket still occupies a queue.
var ActiveStatuses = []QueueStatus{QueueStatusWaiting, QueueStatusCalled, QueueStatusServing}

// IsTerminal reports whether no further transition may leave the status.
func (s QueueStatus) IsTerminal() bool {
	switch s {
	case QueueStatusForwarded, QueueStatusCompleted, QueueStatusCancelled, QueueStatusNoShow:
		return true
	}
	return false
}

// IsActive reports whether the ticket still holds a queue slot.
func (s QueueStatus) IsActive() bool {
	return !s.IsTerminal()
}

var allowedTransitions = map[QueueStatus][]QueueStatus{
	QueueStatusWaiting: {QueueStatusCalled, QueueStatusForwarded, QueueStatusCancelled, QueueStatusNoShow},
	QueueStatusCalled:  {QueueStatusServing, QueueStatusForwarded, QueueStatusCancelled, QueueStatusNoShow},
	QueueStatusServing: {QueueStatusCompleted},
}

// CanTransition reports whether moving from current to next is a legal
// state-machine move.
func CanTransition(current, next QueueStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// QueueTicket is a citizen's position in a service queue. Position numbers
// are monotonic per service and never reused; gaps after cancellations are
// expected. SectorID is denormalized from the service so the one-active-
// ticket-per-sector invariant can be enforced by the store.
type QueueTicket struct {
	ID          string
	UserID      string
	ServiceID   string
	SectorID    string
	Status      QueueStatus
	Position    int64
	ServedBy    *string
	ForwardedTo *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
