package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/geosift/geosift/ai/mock"
	"github.com/geosift/geosift/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPreparer(t *testing.T, embedder *mock.Embedder) *Preparer {
	t.Helper()
	p, err := NewPreparer(embedder, DefaultParams(), WithPoolSize(2), WithEncodeBatchSize(2))
	require.NoError(t, err)
	t.Cleanup(p.Release)
	return p
}

func rawRecord(query, poiName, proba string) *core.SearchRecord {
	return &core.SearchRecord{
		Query:      query,
		AllQueries: []string{query},
		UserLatLon: "1.0,2.0",
		PoiName:    poiName,
		PoiProba:   proba,
	}
}

func TestPreparer_NormalizesProbabilityAndQuery(t *testing.T) {
	p := newTestPreparer(t, mock.NewEmbedder())

	enriched, err := p.Prepare(context.Background(), []*core.SearchRecord{
		rawRecord(" Eiffel Tower ", "Tour Eiffel", "0,75"),
	})
	require.NoError(t, err)
	require.Len(t, enriched, 1)

	assert.Equal(t, "eiffel tower", enriched[0].Query)
	assert.InDelta(t, 0.75, enriched[0].PoiProba, 1e-9)
}

func TestPreparer_ExcludesHomeAndWork(t *testing.T) {
	p := newTestPreparer(t, mock.NewEmbedder())

	enriched, err := p.Prepare(context.Background(), []*core.SearchRecord{
		rawRecord("home", "x", "0.5"),
		rawRecord(" Home ", "x", "0.5"),
		rawRecord("WORK", "x", "0.5"),
		rawRecord("workshop", "x", "0.5"),
	})
	require.NoError(t, err)
	require.Len(t, enriched, 1)
	assert.Equal(t, "workshop", enriched[0].Query)
}

func TestPreparer_DropsMalformedProbabilityRows(t *testing.T) {
	p := newTestPreparer(t, mock.NewEmbedder())

	enriched, err := p.Prepare(context.Background(), []*core.SearchRecord{
		rawRecord("good row", "poi", "0.9"),
		rawRecord("bad row", "poi", "not-a-number"),
	})
	require.NoError(t, err)
	require.Len(t, enriched, 1)
	assert.Equal(t, "good row", enriched[0].Query)
}

func TestPreparer_ComputesSimilarityColumn(t *testing.T) {
	embedder := mock.NewEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		vectors := make([][]float32, len(texts))
		for i, text := range texts {
			if text == "central park" {
				vectors[i] = []float32{1.0, 0.0}
			} else {
				vectors[i] = []float32{0.0, 1.0}
			}
		}
		return vectors, nil
	}
	p := newTestPreparer(t, embedder)

	enriched, err := p.Prepare(context.Background(), []*core.SearchRecord{
		rawRecord("Central Park", "Central Park", "0.9"),
		rawRecord("5th avenue", "Central Park", "0.9"),
	})
	require.NoError(t, err)
	require.Len(t, enriched, 2)

	same, ok := enriched[0].Similarity[SimColumn(ColQuery, ColPoiName)]
	require.True(t, ok)
	assert.InDelta(t, 1.0, same, 1e-6)

	different, ok := enriched[1].Similarity[SimColumn(ColQuery, ColPoiName)]
	require.True(t, ok)
	assert.InDelta(t, 0.0, different, 1e-6)
}

func TestPreparer_NullFieldLeavesSimilarityUndefined(t *testing.T) {
	embedder := mock.NewEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		for _, text := range texts {
			require.NotEmpty(t, text, "null values must never reach the embedder")
		}
		vectors := make([][]float32, len(texts))
		for i := range texts {
			vectors[i] = []float32{1.0, 0.0}
		}
		return vectors, nil
	}
	p := newTestPreparer(t, embedder)

	enriched, err := p.Prepare(context.Background(), []*core.SearchRecord{
		rawRecord("some query", "", "0.5"),
	})
	require.NoError(t, err)
	require.Len(t, enriched, 1)

	_, ok := enriched[0].Similarity[SimColumn(ColQuery, ColPoiName)]
	assert.False(t, ok, "similarity must stay undefined when one side is null")
}

func TestPreparer_EmbedderFailureAbortsStage(t *testing.T) {
	embedder := mock.NewEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("embedding service down")
	}
	p := newTestPreparer(t, embedder)

	_, err := p.Prepare(context.Background(), []*core.SearchRecord{
		rawRecord("some query", "some poi", "0.5"),
	})
	require.Error(t, err)
}

func TestPreparer_QueryListStatistics(t *testing.T) {
	p := newTestPreparer(t, mock.NewEmbedder())

	rec := rawRecord("grand hotel", "Grand Hotel", "0.5")
	rec.AllQueries = []string{"grand hotel", "grand hotel, oslo", "hotel"}

	enriched, err := p.Prepare(context.Background(), []*core.SearchRecord{rec})
	require.NoError(t, err)
	require.Len(t, enriched, 1)

	row := enriched[0]
	assert.Equal(t, 3, row.NumAllQueries)
	assert.Equal(t, []int{11, 17, 5}, row.NumCharAllQueries)
	assert.Equal(t, []int{0, 1, 0}, row.NumCommaAllQueries)
	assert.Equal(t, []int{2, 3, 1}, row.NumWordsAllQueries)
}

func TestPreparer_ColumnProjection(t *testing.T) {
	params := DefaultParams()
	params.Cols = []string{ColQuery, ColPoiName, ColSuccess, ColPoiProba}

	p, err := NewPreparer(mock.NewEmbedder(), params)
	require.NoError(t, err)
	defer p.Release()

	rec := rawRecord("grand hotel", "Grand Hotel", "0.5")
	rec.Location = `{"lat":1.0,"lon":2.0}`

	enriched, err := p.Prepare(context.Background(), []*core.SearchRecord{rec})
	require.NoError(t, err)
	require.Len(t, enriched, 1)

	assert.Empty(t, enriched[0].Location, "non-retained column must be cleared")
	assert.Empty(t, enriched[0].UserLatLon)
	assert.Equal(t, "Grand Hotel", enriched[0].PoiName)
}

func TestNewPreparer_Validation(t *testing.T) {
	_, err := NewPreparer(nil, DefaultParams())
	assert.ErrorIs(t, err, ErrEmbedderRequired)

	params := DefaultParams()
	params.ColsToEncode = []string{ColQuery}
	_, err = NewPreparer(mock.NewEmbedder(), params)
	assert.ErrorIs(t, err, ErrNotEnoughEncodeColumns)

	params = DefaultParams()
	params.ColsToEncode = []string{ColQuery, "no_such_column"}
	_, err = NewPreparer(mock.NewEmbedder(), params)
	assert.ErrorIs(t, err, ErrUnknownEncodeColumn)
}
