package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gxmovies/storefront-client/internal/domain"
)

const (
	// LoginPath is where unauthenticated navigation lands.
	LoginPath = "/"
	// ForbiddenPath is where role-mismatched navigation lands.
	ForbiddenPath = "/forbidden"
)

// Decision is the outcome of a route check.
type Decision int

const (
	Allow Decision = iota
	RedirectLogin
	RedirectForbidden
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "ALLOW"
	case RedirectLogin:
		return "REDIRECT_LOGIN"
	case RedirectForbidden:
		return "REDIRECT_FORBIDDEN"
	default:
		return "UNKNOWN"
	}
}

// Target returns the redirect path, or "" for Allow.
func (d Decision) Target() string {
	switch d {
	case RedirectLogin:
		return LoginPath
	case RedirectForbidden:
		return ForbiddenPath
	default:
		return ""
	}
}

// Decide gates a view that requires the given role.
func Decide(identity *domain.Identity, required domain.Role) Decision {
	if identity == nil {
		return RedirectLogin
	}
	if identity.Role != required {
		return RedirectForbidden
	}
	return Allow
}

// IdentitySource yields the current session identity, nil when logged out.
type IdentitySource interface {
	Identity() *domain.Identity
}

// RequireRole re-evaluates the guard on every request against the live session.
func RequireRole(source IdentitySource, required domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity := source.Identity()
		decision := Decide(identity, required)
		if decision != Allow {
			return c.Redirect(decision.Target(), fiber.StatusSeeOther)
		}
		c.Locals(identityKey, identity)
		return c.Next()
	}
}
