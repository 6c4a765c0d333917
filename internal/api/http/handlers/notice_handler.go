package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/gxmovies/storefront-client/internal/notice"
	apperrors "github.com/gxmovies/storefront-client/pkg/util"
)

// NoticeHandler lists notices and acknowledges alerts.
type NoticeHandler struct {
	board *notice.Board
}

// NewNoticeHandler constructs handler.
func NewNoticeHandler(board *notice.Board) *NoticeHandler {
	return &NoticeHandler{board: board}
}

// List handles GET /notices.
func (h *NoticeHandler) List(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": fiber.Map{
		"notices": h.board.List(),
		"pending": h.board.Pending(),
	}})
}

// Ack handles POST /notices/:id/ack.
func (h *NoticeHandler) Ack(c *fiber.Ctx) error {
	if err := h.board.Ack(c.Params("id")); err != nil {
		if errors.Is(err, notice.ErrUnknownNotice) {
			return apperrors.NewNotFound("notice", map[string]any{"id": c.Params("id")})
		}
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
