package service

import (
	"context"
	"net/http"

	"github.com/gxmovies/storefront-client/internal/api/dto"
	"github.com/gxmovies/storefront-client/internal/domain"
)

const cartsPath = "/carts"

// CartService covers a shopper's cart.
type CartService struct {
	client *Client
}

func (s *CartService) Add(ctx context.Context, req dto.CartRequest) (*domain.CartItem, error) {
	var item domain.CartItem
	if err := s.client.handleRequest(ctx, Request{Method: http.MethodPost, Path: cartsPath, Body: req}, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *CartService) ListForUser(ctx context.Context, userID int) ([]domain.CartItem, error) {
	var items []domain.CartItem
	if err := s.client.handleRequest(ctx, Request{Method: http.MethodGet, Path: cartsPath + "/user/" + id(userID)}, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Remove deletes one cart line by its own id.
func (s *CartService) Remove(ctx context.Context, cartID int) error {
	return s.client.handleRequest(ctx, Request{Method: http.MethodDelete, Path: cartsPath + "/" + id(cartID)}, nil)
}

func (s *CartService) RemoveForUser(ctx context.Context, userID, movieID int) error {
	return s.client.handleRequest(ctx, Request{
		Method: http.MethodDelete,
		Path:   cartsPath + "/user/" + id(userID) + "/movie/" + id(movieID),
	}, nil)
}

// RemoveMany deletes several movies at once. The ids travel in a DELETE body.
func (s *CartService) RemoveMany(ctx context.Context, userID int, movieIDs []int) error {
	return s.client.handleRequest(ctx, Request{
		Method: http.MethodDelete,
		Path:   cartsPath + "/user/remove-multiple-cartItems",
		Body:   movieIDs,
		Query:  query("userId", id(userID)),
	}, nil)
}

func (s *CartService) Clear(ctx context.Context, userID int) error {
	return s.client.handleRequest(ctx, Request{Method: http.MethodDelete, Path: cartsPath + "/user/" + id(userID) + "/clear"}, nil)
}

func (s *CartService) Contains(ctx context.Context, userID, movieID int) (bool, error) {
	var in bool
	err := s.client.handleRequest(ctx, Request{
		Method: http.MethodGet,
		Path:   cartsPath + "/user/" + id(userID) + "/movie/" + id(movieID),
	}, &in)
	return in, err
}
