package domain

// Purchase is a completed order.
type Purchase struct {
	ID            int     `json:"purchaseId"`
	TransactionID string  `json:"transactionId"`
	PaymentMethod string  `json:"paymentMethod"`
	UserID        int     `json:"userId"`
	TotalPrice    float64 `json:"totalPrice"`
	PurchaseDate  string  `json:"purchaseDate,omitempty"`
}

// PurchaseDetail is one movie line of a purchase.
type PurchaseDetail struct {
	ID         int    `json:"purchaseDetailId"`
	PurchaseID int    `json:"purchaseId"`
	MovieID    int    `json:"movieId"`
	Movie      *Movie `json:"movieDTO,omitempty"`
}

// PurchasedMovie is an entry of a user's library.
type PurchasedMovie struct {
	UserID     int         `json:"userId"`
	MovieID    int         `json:"movieId"`
	Title      string      `json:"title"`
	PosterURL  string      `json:"posterURL,omitempty"`
	TrailerURL string      `json:"trailerURL,omitempty"`
	Status     MovieStatus `json:"status,omitempty"`
}
