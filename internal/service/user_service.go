package service

import (
	"context"
	"net/http"
	"net/url"

	"github.com/gxmovies/storefront-client/internal/api/dto"
	"github.com/gxmovies/storefront-client/internal/domain"
)

const usersPath = "/users"

// UserService covers registration, login and account administration.
type UserService struct {
	client *Client
}

// SendRegistrationOTP asks the backend to email a one-time code.
func (s *UserService) SendRegistrationOTP(ctx context.Context, email string) error {
	return s.client.handleRequest(ctx, Request{
		Method: http.MethodPost,
		Path:   usersPath + "/auth/send-registration-otp",
		Query:  query("email", email),
	}, nil)
}

// ValidateRegistration registers the account if otp matches.
func (s *UserService) ValidateRegistration(ctx context.Context, req dto.UserRegisterRequest, otp string) (*domain.User, error) {
	var user domain.User
	err := s.client.handleRequest(ctx, Request{
		Method: http.MethodPost,
		Path:   usersPath + "/auth/validate-registration",
		Body:   req,
		Query:  query("otp", otp),
	}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Login returns the bearer token of a shopper.
func (s *UserService) Login(ctx context.Context, req dto.LoginRequest) (string, error) {
	return s.login(ctx, usersPath+"/auth/user-login", req)
}

// AdminLogin returns the bearer token of an administrator.
func (s *UserService) AdminLogin(ctx context.Context, req dto.LoginRequest) (string, error) {
	return s.login(ctx, usersPath+"/auth/admin-login", req)
}

func (s *UserService) login(ctx context.Context, path string, req dto.LoginRequest) (string, error) {
	var token string
	if err := s.client.handleRequest(ctx, Request{Method: http.MethodPost, Path: path, Body: req}, &token); err != nil {
		return "", err
	}
	return token, nil
}

func (s *UserService) Get(ctx context.Context, userID int) (*domain.User, error) {
	return s.get(ctx, id(userID))
}

func (s *UserService) get(ctx context.Context, userID string) (*domain.User, error) {
	var user domain.User
	if err := s.client.handleRequest(ctx, Request{Method: http.MethodGet, Path: usersPath + "/" + url.PathEscape(userID)}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserService) Update(ctx context.Context, userID int, req dto.UserUpdateRequest) (*domain.User, error) {
	var user domain.User
	if err := s.client.handleRequest(ctx, Request{Method: http.MethodPut, Path: usersPath + "/" + id(userID), Body: req}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserService) Block(ctx context.Context, userID int) error {
	return s.client.handleRequest(ctx, Request{Method: http.MethodPatch, Path: usersPath + "/block/" + id(userID)}, nil)
}

func (s *UserService) Unblock(ctx context.Context, userID int) error {
	return s.client.handleRequest(ctx, Request{Method: http.MethodPatch, Path: usersPath + "/unblock/" + id(userID)}, nil)
}

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := s.client.handleRequest(ctx, Request{Method: http.MethodGet, Path: usersPath}, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// DisplayName resolves the full name of subjectID for the session header.
func (s *UserService) DisplayName(ctx context.Context, subjectID string) (string, error) {
	user, err := s.get(ctx, subjectID)
	if err != nil {
		return "", err
	}
	return user.FullName, nil
}
