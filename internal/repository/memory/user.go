package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/civigo/citizen-portal/internal/domain"
	"github.com/civigo/citizen-portal/internal/repository"
)

type userStore struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

// NewUserRepository returns an in-memory user store.
func NewUserRepository() repository.UserRepository {
	return &userStore{users: map[string]*domain.User{}}
}

func (r *userStore) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.PhoneNumber == user.PhoneNumber {
			return uniqueViolation("users_phone_number_key")
		}
		if user.IdentificationNumber != nil && u.IdentificationNumber != nil &&
			*u.IdentificationNumber == *user.IdentificationNumber {
			return uniqueViolation("users_identification_number_key")
		}
	}
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *userStore) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		clone := *u
		return &clone, nil
	}
	return nil, repository.ErrNoRows
}

func (r *userStore) GetByPhone(_ context.Context, phone string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.PhoneNumber == phone {
			clone := *u
			return &clone, nil
		}
	}
	return nil, repository.ErrNoRows
}

func (r *userStore) GetByIdentificationNumber(_ context.Context, idNumber string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.IdentificationNumber != nil && *u.IdentificationNumber == idNumber {
			clone := *u
			return &clone, nil
		}
	}
	return nil, repository.ErrNoRows
}
