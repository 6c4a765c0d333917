package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gxmovies/storefront-client/internal/domain"
)

const identityKey = "auth_identity"

// IdentityFromContext retrieves the identity admitted by RequireRole.
func IdentityFromContext(c *fiber.Ctx) (*domain.Identity, bool) {
	val := c.Locals(identityKey)
	if val == nil {
		return nil, false
	}
	identity, ok := val.(*domain.Identity)
	return identity, ok && identity != nil
}
