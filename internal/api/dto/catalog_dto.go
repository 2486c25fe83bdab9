package dto

import (
	"time"

	"github.com/civigo/citizen-portal/internal/domain"
)

// SectorRequest payload for sector create/update.
type SectorRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// ServiceRequest payload for service create/update.
type ServiceRequest struct {
	SectorID     string             `json:"sector_id"`
	Name         string             `json:"name"`
	Description  string             `json:"description"`
	Mode         domain.ServiceMode `json:"mode"`
	Availability string             `json:"availability"`
}

// ServiceResponse represents one service.
type ServiceResponse struct {
	ID           string             `json:"id"`
	SectorID     string             `json:"sector_id"`
	Name         string             `json:"name"`
	Description  string             `json:"description"`
	Mode         domain.ServiceMode `json:"mode"`
	Availability string             `json:"availability"`
	CreatedAt    time.Time          `json:"created_at"`
}

// SectorResponse represents a sector with its services.
type SectorResponse struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Icon        string            `json:"icon"`
	Services    []ServiceResponse `json:"services,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// NewServiceResponse maps a domain service.
func NewServiceResponse(s *domain.Service) ServiceResponse {
	return ServiceResponse{
		ID:           s.ID,
		SectorID:     s.SectorID,
		Name:         s.Name,
		Description:  s.Description,
		Mode:         s.Mode,
		Availability: s.Availability,
		CreatedAt:    s.CreatedAt,
	}
}

// NewSectorResponse maps a domain sector and its services.
func NewSectorResponse(sector *domain.Sector, services []domain.Service) SectorResponse {
	resp := SectorResponse{
		ID:          sector.ID,
		Name:        sector.Name,
		Description: sector.Description,
		Icon:        sector.Icon,
		CreatedAt:   sector.CreatedAt,
	}
	for i := range services {
		resp.Services = append(resp.Services, NewServiceResponse(&services[i]))
	}
	return resp
}
