package geocode

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimited_EnforcesMinimumDelay(t *testing.T) {
	calls := 0
	inner := ReverseGeocoderFunc(func(ctx context.Context, latlon string) (string, error) {
		calls++
		return "Somewhere", nil
	})

	limited, err := NewRateLimited(inner, 50*time.Millisecond)
	require.NoError(t, err)

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := limited.Reverse(context.Background(), "1.0,2.0")
		require.NoError(t, err)
	}
	elapsed := time.Since(start)

	assert.Equal(t, 3, calls)
	// First call is immediate, the two following calls each wait the delay.
	assert.GreaterOrEqual(t, elapsed, 100*time.Millisecond)
}

func TestRateLimited_ContextCancellation(t *testing.T) {
	inner := ReverseGeocoderFunc(func(ctx context.Context, latlon string) (string, error) {
		return "Somewhere", nil
	})

	limited, err := NewRateLimited(inner, time.Hour)
	require.NoError(t, err)

	// Exhaust the initial token.
	_, err = limited.Reverse(context.Background(), "1.0,2.0")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = limited.Reverse(ctx, "1.0,2.0")
	assert.Error(t, err)
}

func TestRateLimited_ZeroDelayDisablesThrottling(t *testing.T) {
	inner := ReverseGeocoderFunc(func(ctx context.Context, latlon string) (string, error) {
		return "Somewhere", nil
	})

	limited, err := NewRateLimited(inner, 0)
	require.NoError(t, err)

	start := time.Now()
	for i := 0; i < 10; i++ {
		_, err := limited.Reverse(context.Background(), "1.0,2.0")
		require.NoError(t, err)
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestNewRateLimited_RequiresGeocoder(t *testing.T) {
	_, err := NewRateLimited(nil, time.Second)
	assert.ErrorIs(t, err, ErrGeocoderRequired)
}
