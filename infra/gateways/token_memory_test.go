package gateways

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	protocols "github.com/giovaniif/e-commerce/pix/protocols"
)

func TestTokenStoreMemory(t *testing.T) {
	store := NewTokenStoreMemory()
	ctx := context.Background()

	token, err := store.Get(ctx, "client")
	require.NoError(t, err)
	require.Nil(t, token)

	expiresAt := time.Now().Add(time.Hour)
	require.NoError(t, store.Save(ctx, "client", protocols.AccessToken{Value: "abc", ExpiresAt: expiresAt}))

	token, err = store.Get(ctx, "client")
	require.NoError(t, err)
	require.Equal(t, "abc", token.Value)
	require.True(t, token.Valid(time.Now()))
	require.False(t, token.Valid(expiresAt.Add(time.Second)))

	require.NoError(t, store.Delete(ctx, "client"))
	token, err = store.Get(ctx, "client")
	require.NoError(t, err)
	require.Nil(t, token)
}

func TestTokenStoreMemoryConcurrentAccess(t *testing.T) {
	store := NewTokenStoreMemory()
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Save(ctx, "client", protocols.AccessToken{Value: "v", ExpiresAt: time.Now().Add(time.Minute)})
			_, _ = store.Get(ctx, "client")
		}()
	}
	wg.Wait()
}
