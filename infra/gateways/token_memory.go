package gateways

import (
	"context"
	"sync"

	protocols "github.com/giovaniif/e-commerce/pix/protocols"
)

type TokenStoreMemory struct {
	mutex  sync.RWMutex
	tokens map[string]protocols.AccessToken
}

func NewTokenStoreMemory() *TokenStoreMemory {
	return &TokenStoreMemory{
		tokens: make(map[string]protocols.AccessToken),
	}
}

func (s *TokenStoreMemory) Get(ctx context.Context, key string) (*protocols.AccessToken, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	token, exists := s.tokens[key]
	if !exists {
		return nil, nil
	}
	return &token, nil
}

func (s *TokenStoreMemory) Save(ctx context.Context, key string, token protocols.AccessToken) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.tokens[key] = token
	return nil
}

func (s *TokenStoreMemory) Delete(ctx context.Context, key string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.tokens, key)
	return nil
}
