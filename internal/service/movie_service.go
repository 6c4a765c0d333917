package service

import (
	"context"
	"net/http"

	"github.com/gxmovies/storefront-client/internal/api/dto"
	"github.com/gxmovies/storefront-client/internal/domain"
)

const moviesPath = "/movies"

// MovieService covers the catalog.
type MovieService struct {
	client *Client
}

func (s *MovieService) Add(ctx context.Context, req dto.MovieRequest) (*domain.Movie, error) {
	return s.one(ctx, Request{Method: http.MethodPost, Path: moviesPath + "/add", Body: req})
}

func (s *MovieService) Update(ctx context.Context, movieID int, req dto.MovieRequest) (*domain.Movie, error) {
	return s.one(ctx, Request{Method: http.MethodPut, Path: moviesPath + "/" + id(movieID), Body: req})
}

func (s *MovieService) Get(ctx context.Context, movieID int) (*domain.Movie, error) {
	return s.one(ctx, Request{Method: http.MethodGet, Path: moviesPath + "/" + id(movieID)})
}

// Delete retires a movie. The backend exposes it as a POST.
func (s *MovieService) Delete(ctx context.Context, movieID int) error {
	return s.client.handleRequest(ctx, Request{Method: http.MethodPost, Path: moviesPath + "/" + id(movieID) + "/delete"}, nil)
}

// List returns the whole catalog, unavailable titles included.
func (s *MovieService) List(ctx context.Context) ([]domain.Movie, error) {
	return s.many(ctx, Request{Method: http.MethodGet, Path: moviesPath + "/all"})
}

func (s *MovieService) Available(ctx context.Context) ([]domain.Movie, error) {
	return s.many(ctx, Request{Method: http.MethodGet, Path: moviesPath + "/all/available"})
}

func (s *MovieService) Recommended(ctx context.Context, genre string) ([]domain.Movie, error) {
	return s.many(ctx, Request{Method: http.MethodGet, Path: moviesPath + "/recommended", Query: query("genre", genre)})
}

func (s *MovieService) one(ctx context.Context, r Request) (*domain.Movie, error) {
	var movie domain.Movie
	if err := s.client.handleRequest(ctx, r, &movie); err != nil {
		return nil, err
	}
	return &movie, nil
}

func (s *MovieService) many(ctx context.Context, r Request) ([]domain.Movie, error) {
	var movies []domain.Movie
	if err := s.client.handleRequest(ctx, r, &movies); err != nil {
		return nil, err
	}
	return movies, nil
}
