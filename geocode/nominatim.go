package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/geosift/geosift/core"
)

const defaultNominatimBaseURL = "https://nominatim.openstreetmap.org"

// Nominatim is a ReverseGeocoder backed by the OSM Nominatim API.
// Construct one instance per process and wrap it in RateLimited; Nominatim's
// usage policy requires both an identifying User-Agent and throttled calls.
type Nominatim struct {
	baseURL   string
	userAgent string
	client    *http.Client
	logger    *slog.Logger
}

// NominatimOption configures a Nominatim client.
type NominatimOption func(*Nominatim)

// WithBaseURL overrides the API base URL.
func WithBaseURL(baseURL string) NominatimOption {
	return func(n *Nominatim) {
		n.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) NominatimOption {
	return func(n *Nominatim) {
		n.client = client
	}
}

// WithNominatimLogger sets a custom logger.
// Default is slog.Default().
func WithNominatimLogger(logger *slog.Logger) NominatimOption {
	return func(n *Nominatim) {
		if logger == nil {
			logger = slog.Default()
		}
		n.logger = logger
	}
}

// NewNominatim creates a Nominatim reverse-geocoding client.
func NewNominatim(userAgent string, opts ...NominatimOption) (*Nominatim, error) {
	if userAgent == "" {
		return nil, fmt.Errorf("%w: user agent required", core.ErrProviderUnavailable)
	}
	n := &Nominatim{
		baseURL:   defaultNominatimBaseURL,
		userAgent: userAgent,
		client:    &http.Client{Timeout: 30 * time.Second},
		logger:    slog.Default().With("component", "nominatim"),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n, nil
}

type nominatimResponse struct {
	DisplayName string `json:"display_name"`
	Error       string `json:"error"`
}

// Reverse converts a "lat,lon" pair into the display name of the nearest
// known place.
func (n *Nominatim) Reverse(ctx context.Context, latlon string) (string, error) {
	lat, lon, err := splitLatLon(latlon)
	if err != nil {
		return "", err
	}

	query := url.Values{}
	query.Set("format", "jsonv2")
	query.Set("lat", lat)
	query.Set("lon", lon)
	endpoint := n.baseURL + "/reverse?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", n.userAgent)

	resp, err := n.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: nominatim returned status %d", core.ErrProviderUnavailable, resp.StatusCode)
	}

	var body nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("%w: decoding response: %v", core.ErrProviderUnavailable, err)
	}
	if body.Error != "" {
		n.logger.Debug("nominatim could not resolve coordinates", "latlon", latlon, "err", body.Error)
		return "", fmt.Errorf("reverse geocoding %q: %s", latlon, body.Error)
	}

	return body.DisplayName, nil
}

func splitLatLon(latlon string) (lat, lon string, err error) {
	parts := strings.SplitN(latlon, ",", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidCoordinates, latlon)
	}
	lat = strings.TrimSpace(parts[0])
	lon = strings.TrimSpace(parts[1])
	if lat == "" || lon == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidCoordinates, latlon)
	}
	return lat, lon, nil
}
