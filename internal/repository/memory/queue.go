package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/civigo/citizen-portal/internal/domain"
	"github.com/civigo/citizen-portal/internal/repository"
)

type queueStore struct {
	mu      sync.Mutex
	tickets map[string]*domain.QueueTicket
}

// NewQueueRepository returns an in-memory ticket store. Position allocation
// and the one-active-ticket-per-sector rule behave like the Postgres schema.
func NewQueueRepository() repository.QueueRepository {
	return &queueStore{tickets: map[string]*domain.QueueTicket{}}
}

func (r *queueStore) nextPosition(serviceID string) int64 {
	var max int64
	for _, t := range r.tickets {
		if t.ServiceID == serviceID && t.Position > max {
			max = t.Position
		}
	}
	return max + 1
}

func (r *queueStore) hasActive(userID, sectorID string) bool {
	for _, t := range r.tickets {
		if t.UserID == userID && t.SectorID == sectorID && t.Status.IsActive() {
			return true
		}
	}
	return false
}

func (r *queueStore) CreateWithPosition(_ context.Context, ticket *domain.QueueTicket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.hasActive(ticket.UserID, ticket.SectorID) {
		return uniqueViolation("queue_tickets_active_user_sector_key")
	}
	ticket.ID = uuid.NewString()
	ticket.Position = r.nextPosition(ticket.ServiceID)
	if ticket.CreatedAt.IsZero() {
		ticket.CreatedAt = time.Now()
	}
	ticket.UpdatedAt = time.Now()
	clone := *ticket
	r.tickets[ticket.ID] = &clone
	return nil
}

func (r *queueStore) GetByID(_ context.Context, id string) (*domain.QueueTicket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tickets[id]; ok {
		clone := *t
		return &clone, nil
	}
	return nil, repository.ErrNoRows
}

func (r *queueStore) ListActiveByUser(_ context.Context, userID string) ([]domain.QueueTicket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.QueueTicket
	for _, t := range r.tickets {
		if t.UserID == userID && t.Status.IsActive() {
			result = append(result, *t)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (r *queueStore) ListByUser(_ context.Context, userID string, _ int) ([]domain.QueueTicket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.QueueTicket
	for _, t := range r.tickets {
		if t.UserID == userID {
			result = append(result, *t)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (r *queueStore) ListActiveBySector(_ context.Context, sectorID string) ([]domain.QueueTicket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.QueueTicket
	for _, t := range r.tickets {
		if t.SectorID == sectorID && t.Status.IsActive() {
			result = append(result, *t)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Position < result[j].Position })
	return result, nil
}

func (r *queueStore) ListHistoryBySector(_ context.Context, sectorID string, _ int) ([]domain.QueueTicket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.QueueTicket
	for _, t := range r.tickets {
		if t.SectorID == sectorID && t.Status.IsTerminal() {
			result = append(result, *t)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UpdatedAt.After(result[j].UpdatedAt) })
	return result, nil
}

func (r *queueStore) UpdateStatusCAS(_ context.Context, id string, expected, next domain.QueueStatus, servedBy *string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tickets[id]
	if !ok || t.Status != expected {
		return false, nil
	}
	t.Status = next
	if servedBy != nil {
		t.ServedBy = servedBy
	}
	t.UpdatedAt = time.Now()
	return true, nil
}

func (r *queueStore) Forward(_ context.Context, ticketID string, expected domain.QueueStatus, servedBy string, replacement *domain.QueueTicket) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tickets[ticketID]
	if !ok || t.Status != expected {
		return false, nil
	}
	if replacement.SectorID != t.SectorID && r.hasActive(replacement.UserID, replacement.SectorID) {
		return false, uniqueViolation("queue_tickets_active_user_sector_key")
	}
	t.Status = domain.QueueStatusForwarded
	t.ServedBy = &servedBy
	t.ForwardedTo = &replacement.ServiceID
	t.UpdatedAt = time.Now()

	replacement.ID = uuid.NewString()
	replacement.Status = domain.QueueStatusWaiting
	replacement.Position = r.nextPosition(replacement.ServiceID)
	replacement.UpdatedAt = time.Now()
	clone := *replacement
	r.tickets[replacement.ID] = &clone
	return true, nil
}

func (r *queueStore) StatsBySector(_ context.Context) ([]repository.SectorQueueStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	bySector := map[string]*repository.SectorQueueStats{}
	for _, t := range r.tickets {
		stats, ok := bySector[t.SectorID]
		if !ok {
			stats = &repository.SectorQueueStats{SectorID: t.SectorID}
			bySector[t.SectorID] = stats
		}
		switch t.Status {
		case domain.QueueStatusWaiting:
			stats.Waiting++
		case domain.QueueStatusCalled:
			stats.Called++
		case domain.QueueStatusServing:
			stats.Serving++
		case domain.QueueStatusCompleted:
			if !t.UpdatedAt.Before(midnight) {
				stats.CompletedToday++
			}
		}
		if !t.CreatedAt.Before(midnight) {
			stats.IssuedToday++
		}
	}
	var result []repository.SectorQueueStats
	for _, stats := range bySector {
		result = append(result, *stats)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].SectorID < result[j].SectorID })
	return result, nil
}
