package service

import (
	"context"
	"net/http"

	"github.com/gxmovies/storefront-client/internal/api/dto"
	"github.com/gxmovies/storefront-client/internal/domain"
)

const reviewsPath = "/reviews"

// ReviewService covers reviews and their moderation.
type ReviewService struct {
	client *Client
}

func (s *ReviewService) Add(ctx context.Context, req dto.ReviewRequest) (*domain.Review, error) {
	var review domain.Review
	if err := s.client.handleRequest(ctx, Request{Method: http.MethodPost, Path: reviewsPath + "/add", Body: req}, &review); err != nil {
		return nil, err
	}
	return &review, nil
}

func (s *ReviewService) ForMovie(ctx context.Context, movieID int) ([]domain.Review, error) {
	return s.many(ctx, Request{Method: http.MethodGet, Path: reviewsPath + "/movie/" + id(movieID)})
}

func (s *ReviewService) Reported(ctx context.Context) ([]domain.Review, error) {
	return s.many(ctx, Request{Method: http.MethodGet, Path: reviewsPath + "/reported"})
}

func (s *ReviewService) Delete(ctx context.Context, reviewID int) error {
	return s.client.handleRequest(ctx, Request{Method: http.MethodDelete, Path: reviewsPath + "/" + id(reviewID)}, nil)
}

// Report flags a review for moderation and returns the backend's confirmation text.
func (s *ReviewService) Report(ctx context.Context, reviewID int) (string, error) {
	return s.client.handleMessage(ctx, Request{Method: http.MethodPatch, Path: reviewsPath + "/report/" + id(reviewID)})
}

func (s *ReviewService) many(ctx context.Context, r Request) ([]domain.Review, error) {
	var reviews []domain.Review
	if err := s.client.handleRequest(ctx, r, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}
