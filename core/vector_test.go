package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a        []float32
		b        []float32
		expected float32
	}{
		{
			name:     "identical direction",
			a:        []float32{1.0, 0.0},
			b:        []float32{2.0, 0.0},
			expected: 1.0,
		},
		{
			name:     "orthogonal",
			a:        []float32{1.0, 0.0},
			b:        []float32{0.0, 1.0},
			expected: 0.0,
		},
		{
			name:     "opposite direction",
			a:        []float32{1.0, 1.0},
			b:        []float32{-1.0, -1.0},
			expected: -1.0,
		},
		{
			name:     "45 degrees",
			a:        []float32{1.0, 0.0},
			b:        []float32{1.0, 1.0},
			expected: float32(1.0 / math.Sqrt(2)),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim, err := CosineSimilarity(tt.a, tt.b)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, sim, 1e-6)
		})
	}
}

func TestCosineSimilarity_Symmetric(t *testing.T) {
	a := []float32{0.3, -0.7, 0.2, 0.9}
	b := []float32{0.1, 0.4, -0.5, 0.6}

	ab, err := CosineSimilarity(a, b)
	require.NoError(t, err)
	ba, err := CosineSimilarity(b, a)
	require.NoError(t, err)
	assert.Equal(t, ab, ba)
}

func TestCosineSimilarity_SelfIsOne(t *testing.T) {
	a := []float32{0.3, -0.7, 0.2, 0.9}
	sim, err := CosineSimilarity(a, a)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, sim, 1e-6)
}

func TestCosineSimilarity_DegenerateVector(t *testing.T) {
	zero := []float32{0.0, 0.0, 0.0}
	a := []float32{1.0, 2.0, 3.0}

	_, err := CosineSimilarity(zero, a)
	assert.ErrorIs(t, err, ErrDegenerateVector)

	_, err = CosineSimilarity(a, zero)
	assert.ErrorIs(t, err, ErrDegenerateVector)
}

func TestIDFromContent_Deterministic(t *testing.T) {
	assert.Equal(t, IDFromContent("central park"), IDFromContent("central park"))
	assert.NotEqual(t, IDFromContent("central park"), IDFromContent("hyde park"))
}

func TestEnrichedRecordClone(t *testing.T) {
	rec := &EnrichedRecord{
		Query:      "eiffel tower",
		AllQueries: []string{"eiffel tower", "tour eiffel"},
		Similarity: map[string]float32{"sim_query_poi_name": 0.9},
	}

	clone := rec.Clone()
	clone.Similarity["sim_query_reverse_location"] = 0.8
	clone.AllQueries[0] = "changed"

	assert.Len(t, rec.Similarity, 1)
	assert.Equal(t, "eiffel tower", rec.AllQueries[0])
}
