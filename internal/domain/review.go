package domain

// Review is a user's comment on a movie.
type Review struct {
	ID         int    `json:"reviewId"`
	UserID     int    `json:"userId"`
	MovieID    int    `json:"movieId"`
	Username   string `json:"username,omitempty"`
	MovieName  string `json:"moviename,omitempty"`
	ReviewText string `json:"reviewText"`
	Reported   bool   `json:"reported"`
}
