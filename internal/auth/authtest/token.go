// Package authtest mints backend-shaped tokens for tests.
package authtest

import (
	"strconv"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// Secret signs minted tokens. The client never verifies it.
const Secret = "test-secret"

// Token returns a signed token carrying userId, sub and role claims, mirroring the backend.
func Token(t testing.TB, userID int, role string) string {
	t.Helper()
	return Sign(t, jwt.MapClaims{
		"sub":    strconv.Itoa(userID),
		"userId": userID,
		"role":   role,
		"iat":    time.Now().Unix(),
		"exp":    time.Now().Add(24 * time.Hour).Unix(),
	})
}

// Sign signs arbitrary claims with HS256.
func Sign(t testing.TB, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(Secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}
