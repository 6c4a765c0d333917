package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gxmovies/storefront-client/internal/api/dto"
	"github.com/gxmovies/storefront-client/internal/service"
	apperrors "github.com/gxmovies/storefront-client/pkg/util"
)

const defaultChart = "moviesByGenre"

// AdminHandler serves the ADMIN views.
type AdminHandler struct {
	svc *service.Services
}

// NewAdminHandler constructs handler.
func NewAdminHandler(svc *service.Services) *AdminHandler {
	return &AdminHandler{svc: svc}
}

// Dashboard handles GET /admin/dashboard?chart=.
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	ctx := c.UserContext()
	summary, err := h.svc.Admin.Summary(ctx)
	if err != nil {
		return err
	}
	chartType := c.Query("chart", defaultChart)
	chart, err := h.svc.Admin.Chart(ctx, chartType)
	if err != nil {
		return err
	}
	return view(c, "dashboard", fiber.Map{"summary": summary, "chart_type": chartType, "chart": chart})
}

// Movies handles GET /admin/movies.
func (h *AdminHandler) Movies(c *fiber.Ctx) error {
	movies, err := h.svc.Movies.List(c.UserContext())
	if err != nil {
		return err
	}
	return view(c, "admin-movies", movies)
}

// AddMovie handles POST /admin/movies.
func (h *AdminHandler) AddMovie(c *fiber.Ctx) error {
	req, err := movieRequest(c)
	if err != nil {
		return err
	}
	movie, err := h.svc.Movies.Add(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": movie})
}

// UpdateMovie handles PUT /admin/movies/:id.
func (h *AdminHandler) UpdateMovie(c *fiber.Ctx) error {
	movieID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	req, err := movieRequest(c)
	if err != nil {
		return err
	}
	movie, err := h.svc.Movies.Update(c.UserContext(), movieID, req)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": movie})
}

// DeleteMovie handles DELETE /admin/movies/:id.
func (h *AdminHandler) DeleteMovie(c *fiber.Ctx) error {
	movieID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.Movies.Delete(c.UserContext(), movieID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Reviews handles GET /admin/reviews.
func (h *AdminHandler) Reviews(c *fiber.Ctx) error {
	reviews, err := h.svc.Reviews.Reported(c.UserContext())
	if err != nil {
		return err
	}
	return view(c, "admin-reviews", reviews)
}

// DeleteReview handles DELETE /admin/reviews/:id.
func (h *AdminHandler) DeleteReview(c *fiber.Ctx) error {
	reviewID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.Reviews.Delete(c.UserContext(), reviewID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Users handles GET /admin/users.
func (h *AdminHandler) Users(c *fiber.Ctx) error {
	users, err := h.svc.Users.List(c.UserContext())
	if err != nil {
		return err
	}
	return view(c, "admin-users", users)
}

// BlockUser handles PATCH /admin/users/:id/block.
func (h *AdminHandler) BlockUser(c *fiber.Ctx) error {
	userID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.Users.Block(c.UserContext(), userID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// UnblockUser handles PATCH /admin/users/:id/unblock.
func (h *AdminHandler) UnblockUser(c *fiber.Ctx) error {
	userID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.Users.Unblock(c.UserContext(), userID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func movieRequest(c *fiber.Ctx) (dto.MovieRequest, error) {
	var req dto.MovieRequest
	if err := parseBody(c, &req); err != nil {
		return req, err
	}
	if req.Title == "" || req.Genre == "" {
		return req, apperrors.NewValidationError("title and genre required", nil)
	}
	if req.Price < 0 {
		return req, apperrors.NewValidationError("price must not be negative", nil)
	}
	return req, nil
}
