// Package tokenstore persists the bearer token and the cached display name.
//
// Both values live in one slot. Clear removes them together so no reader can
// observe a token without its name or the other way round.
package tokenstore

import (
	"context"
	"errors"
)

// ErrNotFound reports an empty slot.
var ErrNotFound = errors.New("tokenstore: not found")

// TokenReader is the read side used by the outgoing request gateway.
type TokenReader interface {
	Read(ctx context.Context) (string, error)
}

// Store is the persistent two-slot session storage.
type Store interface {
	TokenReader
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
	SaveDisplayName(ctx context.Context, name string) error
	ReadDisplayName(ctx context.Context) (string, error)
}

// HasToken reports whether a token is currently stored. Read failures other
// than ErrNotFound are returned to the caller.
func HasToken(ctx context.Context, r TokenReader) (bool, error) {
	token, err := r.Read(ctx)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return token != "", nil
}
