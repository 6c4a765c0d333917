package dto

import "github.com/gxmovies/storefront-client/internal/domain"

// MovieRequest payload for adding or updating a catalog entry.
type MovieRequest struct {
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Genre       string             `json:"genre"`
	ReleaseDate string             `json:"releaseDate,omitempty"`
	Price       float64            `json:"price"`
	PosterURL   string             `json:"posterURL,omitempty"`
	TrailerURL  string             `json:"trailerURL,omitempty"`
	Status      domain.MovieStatus `json:"status,omitempty"`
}

// CartRequest adds a movie to a cart.
type CartRequest struct {
	UserID  int `json:"userId"`
	MovieID int `json:"movieId"`
}

// FavoriteRequest adds a movie to favorites.
type FavoriteRequest struct {
	UserID  int `json:"userId"`
	MovieID int `json:"movieId"`
}

// ReviewRequest posts a review.
type ReviewRequest struct {
	UserID     int    `json:"userId"`
	MovieID    int    `json:"movieId"`
	ReviewText string `json:"reviewText"`
}

// MovieIDsRequest selects several movies.
type MovieIDsRequest struct {
	MovieIDs []int `json:"movieIds"`
}

// ReviewTextRequest is the console body for posting a review.
type ReviewTextRequest struct {
	ReviewText string `json:"reviewText"`
}
