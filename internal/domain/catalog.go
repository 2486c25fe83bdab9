package domain

import "time"

// ServiceMode describes how a service is delivered.
type ServiceMode string

const (
	ServiceModeQueue       ServiceMode = "QUEUE"
	ServiceModeAppointment ServiceMode = "APPOINTMENT"
	ServiceModeOnline      ServiceMode = "ONLINE"
)

// Sector is a top-level grouping of government services.
type Sector struct {
	ID          string
	Name        string
	Description string
	Icon        string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Service is a specific offering within a sector.
type Service struct {
	ID           string
	SectorID     string
	Name         string
	Description  string
	Mode         ServiceMode
	Availability string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
