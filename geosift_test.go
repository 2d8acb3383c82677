package geosift

import (
	"context"
	"testing"

	"github.com/geosift/geosift/ai/mock"
	"github.com/geosift/geosift/core"
	"github.com/geosift/geosift/geocode"
	"github.com/geosift/geosift/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPipeline(t *testing.T) *Pipeline {
	t.Helper()

	embedder := mock.NewEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		out := make([][]float32, len(texts))
		for i := range texts {
			out[i] = []float32{1, 0, 0}
		}
		return out, nil
	}

	geocoder := geocode.ReverseGeocoderFunc(func(ctx context.Context, latlon string) (string, error) {
		return "Central Park, New York, United States", nil
	})

	p, err := NewPipeline(
		WithEmbedder(embedder),
		WithGeocoder(geocoder),
	)
	require.NoError(t, err)
	return p
}

func TestPipeline_Run(t *testing.T) {
	p := testPipeline(t)

	report, err := p.Run(context.Background(), []*core.SearchRecord{
		{
			Query:      "Central Park",
			AllQueries: []string{"central park"},
			Location:   `{"lat":40.78,"lon":-73.96}`,
			UserLatLon: "40.78,-73.96",
			PoiName:    "central park",
			Success:    false,
			PoiProba:   "0.9",
		},
		{
			Query:    "123 main street",
			Success:  true,
			PoiProba: "0.1",
		},
		{
			Query:    "home",
			Success:  true,
			PoiProba: "0.2",
		},
	})
	require.NoError(t, err)

	require.Len(t, report.Cohorts.Fail, 1)
	require.Len(t, report.Cohorts.FailPOI, 1)
	require.Len(t, report.Cohorts.Success, 1)
	require.Len(t, report.Cohorts.SuccessAddr, 1)

	require.Len(t, report.Reconciled.All, 1)
	assert.Equal(t, "Central Park", report.Reconciled.All[0].ReverseLocation)
}

func TestNewPipeline_RejectsInvalidParams(t *testing.T) {
	params := pipeline.DefaultParams()
	params.PoiProbaThreshold = 1.5

	_, err := NewPipeline(
		WithEmbedder(mock.NewEmbedder()),
		WithParams(params),
	)
	assert.Error(t, err)
}
