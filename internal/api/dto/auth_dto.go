package dto

import (
	"time"

	"github.com/civigo/citizen-portal/internal/domain"
)

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	Name                 string      `json:"name"`
	PhoneNumber          string      `json:"phone_number"`
	IdentificationNumber *string     `json:"identification_number,omitempty"`
	Password             string      `json:"password"`
	Role                 domain.Role `json:"role,omitempty"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password"`
}

// LoginResponse standard response for login.
type LoginResponse struct {
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expires_at"`
	User      domain.PublicUser `json:"user"`
}
