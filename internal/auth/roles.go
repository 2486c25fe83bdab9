package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/civigo/citizen-portal/internal/domain"
	apperrors "github.com/civigo/citizen-portal/pkg/util"
)

// RequireRoles restricts a route to the listed roles. Membership is an exact
// set check: ADMIN does not implicitly pass OFFICER-only routes. An empty
// list admits any authenticated principal.
func RequireRoles(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[principal.Role]; !exists {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}

// RequireStaff restricts a route to the staff role set.
func RequireStaff() fiber.Handler {
	return RequireRoles(domain.StaffRoles...)
}
