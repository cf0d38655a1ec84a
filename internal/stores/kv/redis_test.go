package kv

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisGetSet(t *testing.T) {
	mr := miniredis.RunT(t)
	store, err := NewRedis(context.Background(), mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()

	_, err = store.Get(ctx, KeyCart)
	assert.ErrorIs(t, err, ErrNoKey)

	require.NoError(t, store.Set(ctx, KeyCart, []byte(`[{"id":1}]`)))
	value, err := store.Get(ctx, KeyCart)
	require.NoError(t, err)
	assert.Equal(t, []byte(`[{"id":1}]`), value)

	// Whole-value overwrite, not append.
	require.NoError(t, store.Set(ctx, KeyCart, []byte(`[]`)))
	value, err = store.Get(ctx, KeyCart)
	require.NoError(t, err)
	assert.Equal(t, []byte(`[]`), value)
}
