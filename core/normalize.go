package core

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ParseProbability parses a poi_proba value, accepting both dot and comma
// decimal separators ("0.75" and "0,75" yield the same float).
// It never silently coerces unparseable input to a default value.
func ParseProbability(raw string) (float64, error) {
	normalized := strings.TrimSpace(strings.ReplaceAll(raw, ",", "."))
	if normalized == "" {
		return 0, fmt.Errorf("%w: empty value", ErrMalformedProbability)
	}
	p, err := strconv.ParseFloat(normalized, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedProbability, raw)
	}
	return p, nil
}

// NormalizeQuery lower-cases a query and strips surrounding whitespace.
func NormalizeQuery(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

type locationPayload struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

// ParseLocation decodes a structured-location payload with lat/lon keys.
// The upstream exporter emits either JSON or single-quoted mapping literals,
// so single quotes are rewritten before a second decode attempt.
func ParseLocation(raw string) (Location, error) {
	payload, err := decodeLocation(raw)
	if err != nil {
		payload, err = decodeLocation(strings.ReplaceAll(raw, "'", `"`))
	}
	if err != nil {
		return Location{}, fmt.Errorf("%w: %q", ErrLocationParse, raw)
	}
	if payload.Lat == nil || payload.Lon == nil {
		return Location{}, fmt.Errorf("%w: missing lat/lon keys in %q", ErrLocationParse, raw)
	}
	return Location{Lat: *payload.Lat, Lon: *payload.Lon}, nil
}

func decodeLocation(raw string) (locationPayload, error) {
	var payload locationPayload
	err := json.Unmarshal([]byte(raw), &payload)
	return payload, err
}
