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

type sectorStore struct {
	mu      sync.Mutex
	sectors map[string]*domain.Sector
}

// NewSectorRepository returns an in-memory sector store.
func NewSectorRepository() repository.SectorRepository {
	return &sectorStore{sectors: map[string]*domain.Sector{}}
}

func (r *sectorStore) Create(_ context.Context, sector *domain.Sector) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sectors {
		if s.Name == sector.Name {
			return uniqueViolation("sectors_name_key")
		}
	}
	sector.ID = uuid.NewString()
	sector.CreatedAt = time.Now()
	sector.UpdatedAt = sector.CreatedAt
	clone := *sector
	r.sectors[sector.ID] = &clone
	return nil
}

func (r *sectorStore) Update(_ context.Context, sector *domain.Sector) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sectors[sector.ID]; !ok {
		return repository.ErrNoRows
	}
	for _, s := range r.sectors {
		if s.ID != sector.ID && s.Name == sector.Name {
			return uniqueViolation("sectors_name_key")
		}
	}
	clone := *sector
	r.sectors[sector.ID] = &clone
	return nil
}

func (r *sectorStore) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sectors[id]; !ok {
		return repository.ErrNoRows
	}
	delete(r.sectors, id)
	return nil
}

func (r *sectorStore) GetByID(_ context.Context, id string) (*domain.Sector, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sectors[id]; ok {
		clone := *s
		return &clone, nil
	}
	return nil, repository.ErrNoRows
}

func (r *sectorStore) List(_ context.Context) ([]domain.Sector, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Sector
	for _, s := range r.sectors {
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

type serviceStore struct {
	mu       sync.Mutex
	services map[string]*domain.Service
}

// NewServiceRepository returns an in-memory service store.
func NewServiceRepository() repository.ServiceRepository {
	return &serviceStore{services: map[string]*domain.Service{}}
}

func (r *serviceStore) Create(_ context.Context, service *domain.Service) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	service.ID = uuid.NewString()
	service.CreatedAt = time.Now()
	service.UpdatedAt = service.CreatedAt
	clone := *service
	r.services[service.ID] = &clone
	return nil
}

func (r *serviceStore) Update(_ context.Context, service *domain.Service) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.services[service.ID]; !ok {
		return repository.ErrNoRows
	}
	clone := *service
	r.services[service.ID] = &clone
	return nil
}

func (r *serviceStore) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.services[id]; !ok {
		return repository.ErrNoRows
	}
	delete(r.services, id)
	return nil
}

func (r *serviceStore) GetByID(_ context.Context, id string) (*domain.Service, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.services[id]; ok {
		clone := *s
		return &clone, nil
	}
	return nil, repository.ErrNoRows
}

func (r *serviceStore) ListBySector(_ context.Context, sectorID string) ([]domain.Service, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Service
	for _, s := range r.services {
		if s.SectorID == sectorID {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}
