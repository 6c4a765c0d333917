package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/gxmovies/storefront-client/internal/api/dto"
	"github.com/gxmovies/storefront-client/internal/auth"
	"github.com/gxmovies/storefront-client/internal/domain"
	"github.com/gxmovies/storefront-client/internal/service"
	"github.com/gxmovies/storefront-client/internal/session"
	apperrors "github.com/gxmovies/storefront-client/pkg/util"
)

const (
	userHomePath       = "/user/home"
	adminDashboardPath = "/admin/dashboard"
)

// SessionHandler covers login, logout and registration.
type SessionHandler struct {
	users    *service.UserService
	session  *session.Manager
	location *session.Location
}

// NewSessionHandler constructs handler.
func NewSessionHandler(users *service.UserService, manager *session.Manager, location *session.Location) *SessionHandler {
	return &SessionHandler{users: users, session: manager, location: location}
}

// LoginView handles GET /.
func (h *SessionHandler) LoginView(c *fiber.Ctx) error {
	return view(c, "login", h.session.State())
}

// Login handles POST /login.
func (h *SessionHandler) Login(c *fiber.Ctx) error {
	return h.login(c, h.users.Login, userHomePath)
}

// AdminLoginView handles GET /admin/login.
func (h *SessionHandler) AdminLoginView(c *fiber.Ctx) error {
	return view(c, "admin-login", h.session.State())
}

// AdminLogin handles POST /admin/login.
func (h *SessionHandler) AdminLogin(c *fiber.Ctx) error {
	return h.login(c, h.users.AdminLogin, adminDashboardPath)
}

func (h *SessionHandler) login(c *fiber.Ctx, call func(context.Context, dto.LoginRequest) (string, error), home string) error {
	var req dto.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	token, err := call(c.UserContext(), req)
	if err != nil {
		return err
	}
	identity, err := h.session.Login(c.UserContext(), token)
	if err != nil {
		return err
	}

	target := home
	if identity.Role == domain.RoleAdmin {
		target = adminDashboardPath
	}
	h.location.Navigate(target)
	return redirect(c, target, fiber.Map{"identity": identity})
}

// Logout handles POST /logout.
func (h *SessionHandler) Logout(c *fiber.Ctx) error {
	h.session.Logout(c.UserContext())
	h.location.Navigate(auth.LoginPath)
	return redirect(c, auth.LoginPath, nil)
}

// State handles GET /session.
func (h *SessionHandler) State(c *fiber.Ctx) error {
	state := h.session.State()
	return c.JSON(fiber.Map{"data": fiber.Map{
		"identity":     state.Identity,
		"display_name": state.DisplayName,
		"location":     h.location.Current(),
	}})
}

// Forbidden handles GET /forbidden.
func (h *SessionHandler) Forbidden(c *fiber.Ctx) error {
	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"view": "forbidden"})
}

// RegisterView handles GET /user/register.
func (h *SessionHandler) RegisterView(c *fiber.Ctx) error {
	return view(c, "register", nil)
}

// SendOTP handles POST /user/register/otp.
func (h *SessionHandler) SendOTP(c *fiber.Ctx) error {
	var req dto.OTPRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.Email == "" {
		return apperrors.NewValidationError("email required", nil)
	}
	if err := h.users.SendRegistrationOTP(c.UserContext(), req.Email); err != nil {
		return err
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"data": fiber.Map{"otp_sent": true}})
}

// Register handles POST /user/register.
func (h *SessionHandler) Register(c *fiber.Ctx) error {
	var req dto.RegistrationRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.User.Email == "" || req.User.Password == "" || req.User.FullName == "" || req.OTP == "" {
		return apperrors.NewValidationError("fullName, email, password and otp required", nil)
	}
	user, err := h.users.ValidateRegistration(c.UserContext(), req.User, req.OTP)
	if err != nil {
		return err
	}
	h.location.Navigate(auth.LoginPath)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"redirect": auth.LoginPath, "data": user})
}
