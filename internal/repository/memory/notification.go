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

type notificationStore struct {
	mu            sync.Mutex
	notifications map[string]*domain.Notification
}

// NewNotificationRepository returns an in-memory notification store.
func NewNotificationRepository() repository.NotificationRepository {
	return &notificationStore{notifications: map[string]*domain.Notification{}}
}

func (r *notificationStore) Create(_ context.Context, n *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n.ID = uuid.NewString()
	n.CreatedAt = time.Now()
	clone := *n
	r.notifications[n.ID] = &clone
	return nil
}

func (r *notificationStore) ListByUser(_ context.Context, userID string, _ int) ([]domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Notification
	for _, n := range r.notifications {
		if n.UserID == userID {
			result = append(result, *n)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (r *notificationStore) CountUnread(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, n := range r.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *notificationStore) MarkRead(_ context.Context, id, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notifications[id]
	if !ok || n.UserID != userID {
		return false, nil
	}
	n.IsRead = true
	return true, nil
}

func (r *notificationStore) MarkAllRead(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notifications {
		if n.UserID == userID {
			n.IsRead = true
		}
	}
	return nil
}

func (r *notificationStore) Delete(_ context.Context, id, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notifications[id]
	if !ok || n.UserID != userID {
		return false, nil
	}
	delete(r.notifications, id)
	return true, nil
}
