package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRouteLabel(t *testing.T) {
	tests := map[string]string{
		"/api/movies/all":          "/api/movies/all",
		"/api/movies/42":           "/api/movies/:id",
		"/api/carts/user/3/movies": "/api/carts/user/:id/movies",
		"/api/purchases/8d3f7c2e-3e1b-4f7a-9a5c-2b1d6e0f4a11/invoice": "/api/purchases/:id/invoice",
		"/": "/",
	}
	for in, want := range tests {
		assert.Equal(t, want, routeLabel(in), in)
	}
}

func TestStatusErrorMessage(t *testing.T) {
	assert.Equal(t, "nope", (&StatusError{Body: []byte(`{"success":false,"message":"nope"}`)}).Message())
	assert.Equal(t, "Too many requests.", (&StatusError{Body: []byte("Too many requests.")}).Message())
	assert.Empty(t, (&StatusError{Body: []byte(`{"success":false}`)}).Message())
	assert.Empty(t, (&StatusError{}).Message())
}
