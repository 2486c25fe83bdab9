package service

import (
	"context"
	"errors"
	"strings"

	"github.com/civigo/citizen-portal/internal/domain"
	"github.com/civigo/citizen-portal/internal/repository"
	apperrors "github.com/civigo/citizen-portal/pkg/util"
)

// CatalogService manages the sector and service catalog. Reads are public;
// every mutation is admin-gated at the route level.
type CatalogService struct {
	sectors  repository.SectorRepository
	services repository.ServiceRepository
}

// NewCatalogService constructs the service.
func NewCatalogService(sectors repository.SectorRepository, services repository.ServiceRepository) *CatalogService {
	return &CatalogService{sectors: sectors, services: services}
}

// SectorInput describes sector create/update payloads.
type SectorInput struct {
	Name        string
	Description string
	Icon        string
}

// ServiceInput describes service create/update payloads.
type ServiceInput struct {
	SectorID     string
	Name         string
	Description  string
	Mode         domain.ServiceMode
	Availability string
}

// SectorWithServices pairs a sector with its offerings for listing.
type SectorWithServices struct {
	Sector   domain.Sector
	Services []domain.Service
}

// ListSectors returns all sectors with their services.
func (s *CatalogService) ListSectors(ctx context.Context) ([]SectorWithServices, error) {
	sectors, err := s.sectors.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	result := make([]SectorWithServices, 0, len(sectors))
	for _, sector := range sectors {
		services, err := s.services.ListBySector(ctx, sector.ID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		result = append(result, SectorWithServices{Sector: sector, Services: services})
	}
	return result, nil
}

// CreateSector creates a sector.
func (s *CatalogService) CreateSector(ctx context.Context, input SectorInput) (*domain.Sector, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("sector name is required", nil)
	}
	sector := &domain.Sector{
		Name:        name,
		Description: input.Description,
		Icon:        input.Icon,
	}
	if err := s.sectors.Create(ctx, sector); err != nil {
		if repository.IsUniqueViolation(err, "") {
			return nil, apperrors.NewConflict("sector name already exists", nil)
		}
		return nil, apperrors.MapError(err)
	}
	return sector, nil
}

// UpdateSector updates a sector.
func (s *CatalogService) UpdateSector(ctx context.Context, id string, input SectorInput) (*domain.Sector, error) {
	sector, err := s.sectors.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNoRows) {
			return nil, apperrors.NewNotFound("sector", nil)
		}
		return nil, apperrors.MapError(err)
	}
	if name := strings.TrimSpace(input.Name); name != "" {
		sector.Name = name
	}
	if input.Description != "" {
		sector.Description = input.Description
	}
	if input.Icon != "" {
		sector.Icon = input.Icon
	}
	if err := s.sectors.Update(ctx, sector); err != nil {
		if repository.IsUniqueViolation(err, "") {
			return nil, apperrors.NewConflict("sector name already exists", nil)
		}
		return nil, apperrors.MapError(err)
	}
	return sector, nil
}

// DeleteSector removes a sector and, through the schema, its services.
func (s *CatalogService) DeleteSector(ctx context.Context, id string) error {
	if err := s.sectors.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNoRows) {
			return apperrors.NewNotFound("sector", nil)
		}
		return apperrors.MapError(err)
	}
	return nil
}

// GetService returns one service.
func (s *CatalogService) GetService(ctx context.Context, id string) (*domain.Service, error) {
	service, err := s.services.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNoRows) {
			return nil, apperrors.NewNotFound("service", nil)
		}
		return nil, apperrors.MapError(err)
	}
	return service, nil
}

// CreateService creates a service under an existing sector.
func (s *CatalogService) CreateService(ctx context.Context, input ServiceInput) (*domain.Service, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" || input.SectorID == "" {
		return nil, apperrors.NewValidationError("service name and sector_id are required", nil)
	}
	if _, err := s.sectors.GetByID(ctx, input.SectorID); err != nil {
		if errors.Is(err, repository.ErrNoRows) {
			return nil, apperrors.NewNotFound("sector", nil)
		}
		return nil, apperrors.MapError(err)
	}
	mode := input.Mode
	if mode == "" {
		mode = domain.ServiceModeQueue
	}
	service := &domain.Service{
		SectorID:     input.SectorID,
		Name:         name,
		Description:  input.Description,
		Mode:         mode,
		Availability: input.Availability,
	}
	if err := s.services.Create(ctx, service); err != nil {
		return nil, apperrors.MapError(err)
	}
	return service, nil
}

// UpdateService updates a service.
func (s *CatalogService) UpdateService(ctx context.Context, id string, input ServiceInput) (*domain.Service, error) {
	service, err := s.services.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNoRows) {
			return nil, apperrors.NewNotFound("service", nil)
		}
		return nil, apperrors.MapError(err)
	}
	if input.SectorID != "" && input.SectorID != service.SectorID {
		if _, err := s.sectors.GetByID(ctx, input.SectorID); err != nil {
			if errors.Is(err, repository.ErrNoRows) {
				return nil, apperrors.NewNotFound("sector", nil)
			}
			return nil, apperrors.MapError(err)
		}
		service.SectorID = input.SectorID
	}
	if name := strings.TrimSpace(input.Name); name != "" {
		service.Name = name
	}
	if input.Description != "" {
		service.Description = input.Description
	}
	if input.Mode != "" {
		service.Mode = input.Mode
	}
	if input.Availability != "" {
		service.Availability = input.Availability
	}
	if err := s.services.Update(ctx, service); err != nil {
		return nil, apperrors.MapError(err)
	}
	return service, nil
}

// DeleteService removes a service.
func (s *CatalogService) DeleteService(ctx context.Context, id string) error {
	if err := s.services.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNoRows) {
			return apperrors.NewNotFound("service", nil)
		}
		return apperrors.MapError(err)
	}
	return nil
}
