// Copyright 2026 Geosift Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package provider

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

const defaultWebSearchEndpoint = "https://api.bing.microsoft.com/v7.0/search"

// blockList holds URL substrings of review aggregators, map frontends and
// social sites whose hits say nothing about whether the query names a real
// place. Matched as plain substrings over the full URL.
var blockList = []string{
	"yelp",
	"tripadvisor",
	"hotels.com",
	"foursquare",
	"facebook",
	"maps.google",
	"maps.bing",
	"booking.com",
	"michelin.com",
	"youtube",
	"instagram",
	"google.com",
}

// WebSearch queries an external web-search API.
type WebSearch struct {
	endpoint string
	apiKey   string
	client   *http.Client
	logger   *slog.Logger
}

var _ SearchProvider = (*WebSearch)(nil)

// WebSearchOption configures a WebSearch provider.
type WebSearchOption func(*WebSearch) error

// WithEndpoint overrides the web-search API endpoint.
func WithEndpoint(endpoint string) WebSearchOption {
	return func(w *WebSearch) error {
		if endpoint != "" {
			w.endpoint = endpoint
		}
		return nil
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) WebSearchOption {
	return func(w *WebSearch) error {
		if client != nil {
			w.client = client
		}
		return nil
	}
}

// WithWebSearchLogger sets a custom logger.
// Default is slog.Default().
func WithWebSearchLogger(logger *slog.Logger) WebSearchOption {
	return func(w *WebSearch) error {
		if logger == nil {
			logger = slog.Default()
		}
		w.logger = logger
		return nil
	}
}

// NewWebSearch creates a web-search provider. The API key is mandatory.
func NewWebSearch(apiKey string, opts ...WebSearchOption) (*WebSearch, error) {
	if apiKey == "" {
		return nil, ErrAPIKeyRequired
	}

	w := &WebSearch{
		endpoint: defaultWebSearchEndpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: 30 * time.Second},
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(w); err != nil {
			return nil, err
		}
	}

	return w, nil
}

// webSearchResponse mirrors the subset of the API response we consume.
// WebPages stays a pointer: its absence means the response had no results
// container, which callers must be able to tell apart from an empty list.
type webSearchResponse struct {
	WebPages *struct {
		TotalEstimatedMatches int `json:"totalEstimatedMatches"`
		Value                 []struct {
			URL  string `json:"url"`
			Name string `json:"name"`
		} `json:"value"`
	} `json:"webPages"`
}

// Search runs the query against the web-search API. Duplicate (url, name)
// pairs are collapsed and blocklisted URLs removed before results are
// returned.
func (w *WebSearch) Search(ctx context.Context, query string, opts ...SearchOption) (*Results, error) {
	options := applyOptions(opts)

	endpoint, err := url.Parse(w.endpoint)
	if err != nil {
		return nil, fmt.Errorf("parsing endpoint: %w", err)
	}
	values := endpoint.Query()
	values.Set("q", query)
	endpoint.RawQuery = values.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", w.apiKey)
	if options.latitude != "" && options.longitude != "" {
		req.Header.Set("X-Search-Location",
			fmt.Sprintf("lat:%s;long:%s;re:22", options.latitude, options.longitude))
	}

	started := time.Now()
	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: web search returned status %d", core.ErrProviderUnavailable, resp.StatusCode)
	}

	var body webSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decoding web search response: %v", core.ErrProviderUnavailable, err)
	}

	if body.WebPages == nil {
		w.logger.Debug("web search returned no results container", "query", query)
		return nil, nil
	}

	seen := make(map[[2]string]bool, len(body.WebPages.Value))
	items := make([]Result, 0, len(body.WebPages.Value))
	for _, page := range body.WebPages.Value {
		identity := [2]string{page.URL, page.Name}
		if seen[identity] {
			continue
		}
		seen[identity] = true
		if blocked(page.URL) {
			continue
		}
		items = append(items, Result{
			Fields: map[string]any{
				"url":  page.URL,
				"name": page.Name,
			},
		})
	}

	return &Results{
		Items: items,
		Total: body.WebPages.TotalEstimatedMatches,
		Took:  time.Since(started),
		Query: query,
	}, nil
}

func blocked(pageURL string) bool {
	for _, item := range blockList {
		if strings.Contains(pageURL, item) {
			return true
		}
	}
	return false
}
