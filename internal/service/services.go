package service

import (
	"net/url"
	"strconv"
)

// Services groups the per-area services over one Client.
type Services struct {
	Users           *UserService
	Movies          *MovieService
	Carts           *CartService
	Favorites       *FavoriteService
	Purchases       *PurchaseService
	PurchaseDetails *PurchaseDetailService
	Reviews         *ReviewService
	Admin           *AdminService
}

// New builds every service on top of client.
func New(client *Client) *Services {
	return &Services{
		Users:           &UserService{client: client},
		Movies:          &MovieService{client: client},
		Carts:           &CartService{client: client},
		Favorites:       &FavoriteService{client: client},
		Purchases:       &PurchaseService{client: client},
		PurchaseDetails: &PurchaseDetailService{client: client},
		Reviews:         &ReviewService{client: client},
		Admin:           &AdminService{client: client},
	}
}

func id(v int) string {
	return strconv.Itoa(v)
}

func query(kv ...string) url.Values {
	q := url.Values{}
	for i := 0; i+1 < len(kv); i += 2 {
		q.Set(kv[i], kv[i+1])
	}
	return q
}
