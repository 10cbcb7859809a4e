package gateways

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	protocols "github.com/giovaniif/e-commerce/pix/protocols"
)

const tokenKeyPrefix = "pix:efi:token:"

// TokenStoreRedis shares the gateway OAuth token between service replicas.
type TokenStoreRedis struct {
	client *redis.Client
	now    func() time.Time
}

func NewTokenStoreRedis(client *redis.Client) *TokenStoreRedis {
	return &TokenStoreRedis{client: client, now: time.Now}
}

func (s *TokenStoreRedis) key(key string) string {
	return tokenKeyPrefix + key
}

func (s *TokenStoreRedis) Get(ctx context.Context, key string) (*protocols.AccessToken, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	var token protocols.AccessToken
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("redis unmarshal: %w", err)
	}
	return &token, nil
}

func (s *TokenStoreRedis) Save(ctx context.Context, key string, token protocols.AccessToken) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	ttl := token.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	raw, err := json.Marshal(token)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(key), raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *TokenStoreRedis) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
