package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/geosift/geosift/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNominatim_Reverse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reverse", r.URL.Path)
		assert.Equal(t, "40.78", r.URL.Query().Get("lat"))
		assert.Equal(t, "-73.96", r.URL.Query().Get("lon"))
		assert.Equal(t, "geosift-test", r.Header.Get("User-Agent"))
		w.Write([]byte(`{"display_name":"Central Park, New York, NY, United States"}`))
	}))
	defer server.Close()

	n, err := NewNominatim("geosift-test", WithBaseURL(server.URL))
	require.NoError(t, err)

	name, err := n.Reverse(context.Background(), "40.78,-73.96")
	require.NoError(t, err)
	assert.Equal(t, "Central Park, New York, NY, United States", name)
}

func TestNominatim_Reverse_ServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	n, err := NewNominatim("geosift-test", WithBaseURL(server.URL))
	require.NoError(t, err)

	_, err = n.Reverse(context.Background(), "1.0,2.0")
	assert.ErrorIs(t, err, core.ErrProviderUnavailable)
}

func TestNominatim_Reverse_UnresolvableCoordinates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":"Unable to geocode"}`))
	}))
	defer server.Close()

	n, err := NewNominatim("geosift-test", WithBaseURL(server.URL))
	require.NoError(t, err)

	_, err = n.Reverse(context.Background(), "0.0,0.0")
	require.Error(t, err)
	assert.NotErrorIs(t, err, core.ErrProviderUnavailable, "a per-row miss is not a provider outage")
}

func TestNominatim_Reverse_InvalidCoordinates(t *testing.T) {
	n, err := NewNominatim("geosift-test")
	require.NoError(t, err)

	for _, latlon := range []string{"", "40.78", ",", "40.78,"} {
		_, err := n.Reverse(context.Background(), latlon)
		assert.ErrorIs(t, err, ErrInvalidCoordinates, "latlon=%q", latlon)
	}
}
