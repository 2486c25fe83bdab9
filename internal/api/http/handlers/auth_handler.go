package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/civigo/citizen-portal/internal/api/dto"
	"github.com/civigo/citizen-portal/internal/domain"
	"github.com/civigo/citizen-portal/internal/service"
	apperrors "github.com/civigo/citizen-portal/pkg/util"
)

// AuthHandler exposes registration and login endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Role != "" {
		switch req.Role {
		case domain.RoleCitizen, domain.RoleOfficer, domain.RoleHelpdesk, domain.RoleAdmin:
		default:
			return apperrors.NewValidationError("unknown role", map[string]any{"role": req.Role})
		}
	}

	user, err := h.auth.Register(c.Context(), service.RegisterInput{
		Name:                 req.Name,
		PhoneNumber:          req.PhoneNumber,
		IdentificationNumber: req.IdentificationNumber,
		Password:             req.Password,
		Role:                 req.Role,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message": "registered successfully",
		"user_id": user.ID,
	})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.PhoneNumber == "" || req.Password == "" {
		return apperrors.NewValidationError("phone_number and password required", nil)
	}

	user, token, exp, err := h.auth.Login(c.Context(), req.PhoneNumber, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(dto.LoginResponse{
		Token:     token,
		ExpiresAt: exp,
		User:      user.Public(),
	})
}
