package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/civigo/citizen-portal/internal/domain"
	apperrors "github.com/civigo/citizen-portal/pkg/util"
)

const principalKey = "auth_principal"

// Principal is the authenticated identity attached to a request after token
// verification. Verification is stateless: no store lookup per request.
type Principal struct {
	UserID string
	Role   domain.Role
	Name   string
}

// AuthMiddleware validates bearer tokens and attaches principals.
type AuthMiddleware struct {
	tokens *TokenManager
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid or expired token")
	}

	c.Locals(principalKey, &Principal{
		UserID: claims.UserID,
		Role:   claims.Role,
		Name:   claims.Name,
	})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated identity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
