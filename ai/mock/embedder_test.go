package mock

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedderDeterministic(t *testing.T) {
	embedder := NewEmbedder()
	ctx := context.Background()

	first, err := embedder.EmbedText(ctx, "central park")
	require.NoError(t, err)
	second, err := embedder.EmbedText(ctx, "central park")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, 384)

	other, err := embedder.EmbedText(ctx, "hyde park")
	require.NoError(t, err)
	assert.NotEqual(t, first, other)
}

func TestEmbedderVectorsAreUnitLength(t *testing.T) {
	embedder := NewEmbedder()

	vectors, err := embedder.EmbedTexts(context.Background(), []string{"a", "longer text here"})
	require.NoError(t, err)

	for _, vector := range vectors {
		var sumSquares float64
		for _, v := range vector {
			sumSquares += float64(v) * float64(v)
		}
		assert.InDelta(t, 1.0, math.Sqrt(sumSquares), 1e-3)
	}
}

func TestEmbedderInjection(t *testing.T) {
	embedder := NewEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 2, 3}, nil
	}

	vector, err := embedder.EmbedText(context.Background(), "anything")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3}, vector)
	assert.Equal(t, 1, embedder.CallCount())

	embedder.Reset()
	assert.Equal(t, 0, embedder.CallCount())
	assert.Nil(t, embedder.EmbedTextFunc)
}
