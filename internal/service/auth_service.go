package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/civigo/citizen-portal/internal/auth"
	"github.com/civigo/citizen-portal/internal/config"
	"github.com/civigo/citizen-portal/internal/domain"
	"github.com/civigo/citizen-portal/internal/repository"
	apperrors "github.com/civigo/citizen-portal/pkg/util"
)

// AuthService coordinates registration and login flows.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, users repository.UserRepository) *AuthService {
	return &AuthService{
		users:      users,
		tokenMgr:   auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTLHours),
		bcryptCost: cfg.BcryptCost,
	}
}

// RegisterInput describes a registration request.
type RegisterInput struct {
	Name                 string
	PhoneNumber          string
	IdentificationNumber *string
	Password             string
	Role                 domain.Role
}

// Register creates a new account. Phone numbers are unique; identification
// numbers are unique among non-null values. The plaintext password is hashed
// immediately and never stored or logged.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	name := strings.TrimSpace(input.Name)
	phone := strings.TrimSpace(input.PhoneNumber)
	if name == "" || phone == "" || input.Password == "" {
		return nil, apperrors.NewValidationError("name, phone number and password are required", nil)
	}

	if _, err := s.users.GetByPhone(ctx, phone); err == nil {
		return nil, apperrors.NewConflict("phone number already registered", nil)
	} else if !errors.Is(err, repository.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	if input.IdentificationNumber != nil && strings.TrimSpace(*input.IdentificationNumber) != "" {
		idNum := strings.TrimSpace(*input.IdentificationNumber)
		input.IdentificationNumber = &idNum
		if _, err := s.users.GetByIdentificationNumber(ctx, idNum); err == nil {
			return nil, apperrors.NewConflict("identification number already registered", nil)
		} else if !errors.Is(err, repository.ErrNoRows) {
			return nil, apperrors.MapError(err)
		}
	} else {
		input.IdentificationNumber = nil
	}

	role := input.Role
	if role == "" {
		role = domain.RoleCitizen
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Name:                 name,
		PhoneNumber:          phone,
		IdentificationNumber: input.IdentificationNumber,
		PasswordHash:         hash,
		Role:                 role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// The pre-checks race with concurrent registrations; the store's
		// unique indexes are the final word.
		if repository.IsUniqueViolation(err, "") {
			return nil, apperrors.NewConflict("phone or identification number already registered", nil)
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// Login authenticates by phone number and password and issues a 24h token.
// The failure message never distinguishes an unknown phone from a wrong
// password.
func (s *AuthService) Login(ctx context.Context, phone, password string) (*domain.User, string, time.Time, error) {
	user, err := s.users.GetByPhone(ctx, strings.TrimSpace(phone))
	if err != nil {
		if errors.Is(err, repository.ErrNoRows) {
			return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}
	token, exp, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}
	return user, token, exp, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
