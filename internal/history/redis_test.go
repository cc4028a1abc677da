package history

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisBackendRoundTrip(t *testing.T) {
	addr := os.Getenv("VELOTYPE_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("VELOTYPE_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	key := "velotype:test:" + uuid.NewString()
	backend, err := NewRedisBackend(ctx, addr, os.Getenv("VELOTYPE_TEST_REDIS_PASSWORD"), key)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = backend.client.Del(context.Background(), key).Err()
		_ = backend.Close()
	})

	items, err := backend.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	st := Open(ctx, backend, nil)
	require.NoError(t, st.Append(ctx, item("a", 40, map[string]int{"q": 1})))

	items, err = backend.Load(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].MissedKeys["q"])
}
