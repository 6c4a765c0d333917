package tokenstore

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// Redis keeps the two slots as plain string keys under a shared prefix.
type Redis struct {
	client      redis.UniversalClient
	tokenKey    string
	usernameKey string
}

// NewRedis returns a store using prefix:token and prefix:username.
func NewRedis(client redis.UniversalClient, prefix string) *Redis {
	return &Redis{
		client:      client,
		tokenKey:    prefix + ":token",
		usernameKey: prefix + ":username",
	}
}

func (r *Redis) Save(ctx context.Context, token string) error {
	return r.client.Set(ctx, r.tokenKey, token, 0).Err()
}

func (r *Redis) Read(ctx context.Context) (string, error) {
	return r.get(ctx, r.tokenKey)
}

// Clear deletes both keys inside one MULTI/EXEC.
func (r *Redis) Clear(ctx context.Context) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.tokenKey, r.usernameKey)
		return nil
	})
	return err
}

func (r *Redis) SaveDisplayName(ctx context.Context, name string) error {
	return r.client.Set(ctx, r.usernameKey, name, 0).Err()
}

func (r *Redis) ReadDisplayName(ctx context.Context) (string, error) {
	return r.get(ctx, r.usernameKey)
}

func (r *Redis) get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) || (err == nil && val == "") {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return val, nil
}
