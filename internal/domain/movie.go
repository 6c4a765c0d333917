package domain

// MovieStatus marks whether a title can be bought.
type MovieStatus string

const (
	MovieStatusAvailable   MovieStatus = "AVAILABLE"
	MovieStatusUnavailable MovieStatus = "UNAVAILABLE"
)

// Movie is a catalog entry.
type Movie struct {
	ID            int         `json:"movieId"`
	Title         string      `json:"title"`
	Description   string      `json:"description"`
	Genre         string      `json:"genre"`
	ReleaseDate   string      `json:"releaseDate,omitempty"`
	AverageRating float64     `json:"averageRating"`
	Price         float64     `json:"price"`
	PosterURL     string      `json:"posterURL,omitempty"`
	TrailerURL    string      `json:"trailerURL,omitempty"`
	Status        MovieStatus `json:"status,omitempty"`
}

// CartItem links a movie to a user's cart.
type CartItem struct {
	ID      int    `json:"cartId"`
	UserID  int    `json:"userId"`
	MovieID int    `json:"movieId"`
	Movie   *Movie `json:"movieDTO,omitempty"`
}

// Favorite links a movie to a user's favorites list.
type Favorite struct {
	ID      int    `json:"favoriteId"`
	UserID  int    `json:"userId"`
	MovieID int    `json:"movieId"`
	Movie   *Movie `json:"movieDTO,omitempty"`
}
