package dto

// PurchaseRequest checks out a set of movies.
type PurchaseRequest struct {
	UserID        int     `json:"userId"`
	MovieIDs      []int   `json:"movieIds"`
	TotalPrice    float64 `json:"totalPrice"`
	TransactionID string  `json:"transactionId"`
	PaymentMethod string  `json:"paymentMethod"`
}

// CheckoutRequest buys the whole cart.
type CheckoutRequest struct {
	PaymentMethod string `json:"paymentMethod"`
}
