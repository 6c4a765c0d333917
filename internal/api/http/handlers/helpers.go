package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/gxmovies/storefront-client/internal/auth"
	apperrors "github.com/gxmovies/storefront-client/pkg/util"
)

// view renders a named console view.
func view(c *fiber.Ctx, name string, data any) error {
	return c.JSON(fiber.Map{"view": name, "data": data})
}

// redirect tells the caller where the client navigated.
func redirect(c *fiber.Ctx, target string, data any) error {
	return c.JSON(fiber.Map{"redirect": target, "data": data})
}

// currentUserID reads the numeric user id of the identity admitted by the guard.
func currentUserID(c *fiber.Ctx) (int, error) {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return 0, apperrors.NewDomainError("UNAUTHORIZED", "login required", http.StatusUnauthorized, nil)
	}
	id, err := strconv.Atoi(identity.SubjectID)
	if err != nil {
		return 0, apperrors.NewDomainError("UNAUTHORIZED", "session subject is not a user id", http.StatusUnauthorized, nil)
	}
	return id, nil
}

func paramID(c *fiber.Ctx, name string) (int, error) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError(name+" must be a positive number", map[string]any{"param": name})
	}
	return id, nil
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return nil
}
