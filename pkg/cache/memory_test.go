package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/sentinela-app/sentinela-go/internal/domain/model"
	"github.com/sentinela-app/sentinela-go/pkg/cache"
)

func newMemoryCache(t *testing.T) *cache.MemoryCache {
	return cache.NewMemoryCache(time.Minute, time.Minute, nil, zaptest.NewLogger(t))
}

func TestMemoryCache_SetGet(t *testing.T) {
	ctx := context.Background()
	c := newMemoryCache(t)

	person := model.Person{ID: 1, FullName: "Fulano"}
	require.NoError(t, c.Set(ctx, "people:detail:1", person, time.Minute))

	var got model.Person
	found, err := c.Get(ctx, "people:detail:1", &got)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, person.FullName, got.FullName)

	found, err = c.Get(ctx, "inexistente", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryCache_NilPointerRoundtrip(t *testing.T) {
	ctx := context.Background()
	c := newMemoryCache(t)

	// Resultado negativo cacheado: ponteiro nulo entra e sai nulo
	var nothing *model.Person
	require.NoError(t, c.Set(ctx, "people:cpf:000", nothing, time.Minute))

	var got *model.Person
	found, err := c.Get(ctx, "people:cpf:000", &got)
	require.NoError(t, err)
	require.True(t, found)
	assert.Nil(t, got)
}

func TestMemoryCache_Expiration(t *testing.T) {
	ctx := context.Background()
	c := newMemoryCache(t)

	require.NoError(t, c.Set(ctx, "efemero", "valor", 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	var got string
	found, err := c.Get(ctx, "efemero", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryCache_DeletePrefix(t *testing.T) {
	ctx := context.Background()
	c := newMemoryCache(t)

	require.NoError(t, c.Set(ctx, "people:list:page=1", "a", time.Minute))
	require.NoError(t, c.Set(ctx, "people:list:page=2", "b", time.Minute))
	require.NoError(t, c.Set(ctx, "people:detail:1", "c", time.Minute))

	require.NoError(t, c.DeletePrefix(ctx, "people:list:"))

	var got string
	found, _ := c.Get(ctx, "people:list:page=1", &got)
	assert.False(t, found)
	found, _ = c.Get(ctx, "people:list:page=2", &got)
	assert.False(t, found)

	// Chaves fora do prefixo permanecem
	found, _ = c.Get(ctx, "people:detail:1", &got)
	assert.True(t, found)
}

func TestMemoryCache_Clear(t *testing.T) {
	ctx := context.Background()
	c := newMemoryCache(t)

	require.NoError(t, c.Set(ctx, "a", 1, time.Minute))
	require.NoError(t, c.Set(ctx, "b", 2, time.Minute))
	require.NoError(t, c.Clear(ctx))

	var got int
	found, _ := c.Get(ctx, "a", &got)
	assert.False(t, found)
}
