package protocols

import (
	"context"
	"time"
)

type AccessToken struct {
	Value     string    `json:"value"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (t *AccessToken) Valid(now time.Time) bool {
	return t != nil && t.Value != "" && now.Before(t.ExpiresAt)
}

// TokenStore returns nil, nil when no token is cached under key.
type TokenStore interface {
	Get(ctx context.Context, key string) (*AccessToken, error)
	Save(ctx context.Context, key string, token AccessToken) error
	Delete(ctx context.Context, key string) error
}
