package embedding

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCached_ReusesVectors(t *testing.T) {
	inner := &countingEmbedder{}
	cached := NewCached(inner, 16, time.Minute, nil)

	first, err := cached.Embed(context.Background(), []string{"uno", "dos"})
	require.NoError(t, err)
	assert.Equal(t, int32(1), inner.calls.Load())

	second, err := cached.Embed(context.Background(), []string{"dos", "tres", "uno"})
	require.NoError(t, err)
	assert.Equal(t, int32(2), inner.calls.Load(), "only the miss should reach the model")
	assert.Equal(t, first[1], second[0])
	assert.Equal(t, first[0], second[2])
	assert.Equal(t, []float32{4, 1}, second[1])

	_, err = cached.Embed(context.Background(), []string{"uno", "dos", "tres"})
	require.NoError(t, err)
	assert.Equal(t, int32(2), inner.calls.Load())
}

func TestCached_ReturnsCopies(t *testing.T) {
	cached := NewCached(&countingEmbedder{}, 4, time.Minute, nil)

	v, err := cached.Embed(context.Background(), []string{"hola"})
	require.NoError(t, err)
	v[0][0] = 99

	again, err := cached.Embed(context.Background(), []string{"hola"})
	require.NoError(t, err)
	assert.Equal(t, float32(4), again[0][0])
}

func TestNewCached_DisabledReturnsInner(t *testing.T) {
	inner := &countingEmbedder{}
	assert.Same(t, inner, NewCached(inner, 0, time.Minute, nil))
	assert.Same(t, inner, NewCached(inner, 8, 0, nil))
}
