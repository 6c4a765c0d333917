package service

import (
	"context"
	"net/http"

	"github.com/gxmovies/storefront-client/internal/api/dto"
	"github.com/gxmovies/storefront-client/internal/domain"
)

const favoritesPath = "/favorites"

// FavoriteService covers a shopper's favorites list.
type FavoriteService struct {
	client *Client
}

func (s *FavoriteService) Add(ctx context.Context, req dto.FavoriteRequest) (*domain.Favorite, error) {
	var fav domain.Favorite
	if err := s.client.handleRequest(ctx, Request{Method: http.MethodPost, Path: favoritesPath, Body: req}, &fav); err != nil {
		return nil, err
	}
	return &fav, nil
}

func (s *FavoriteService) ListForUser(ctx context.Context, userID int) ([]domain.Favorite, error) {
	var favs []domain.Favorite
	if err := s.client.handleRequest(ctx, Request{Method: http.MethodGet, Path: favoritesPath + "/user/" + id(userID)}, &favs); err != nil {
		return nil, err
	}
	return favs, nil
}

func (s *FavoriteService) Delete(ctx context.Context, favoriteID int) error {
	return s.client.handleRequest(ctx, Request{Method: http.MethodDelete, Path: favoritesPath + "/" + id(favoriteID)}, nil)
}

func (s *FavoriteService) IsFavorite(ctx context.Context, userID, movieID int) (bool, error) {
	var fav bool
	err := s.client.handleRequest(ctx, Request{
		Method: http.MethodGet,
		Path:   favoritesPath + "/user/" + id(userID) + "/movie/" + id(movieID),
	}, &fav)
	return fav, err
}

func (s *FavoriteService) RemoveForUser(ctx context.Context, userID, movieID int) error {
	return s.client.handleRequest(ctx, Request{
		Method: http.MethodDelete,
		Path:   favoritesPath,
		Query:  query("userId", id(userID), "movieId", id(movieID)),
	}, nil)
}
