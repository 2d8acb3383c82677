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


package core

import "errors"

// Row-level errors are logged and the affected row excluded from output;
// collaborator-level errors abort the affected stage.
var (
	// ErrMalformedProbability indicates a poi_proba value that cannot be
	// parsed as a float under either decimal-separator convention.
	ErrMalformedProbability = errors.New("malformed probability value")

	// ErrLocationParse indicates a malformed structured-location payload.
	ErrLocationParse = errors.New("malformed location payload")

	// ErrDegenerateVector indicates a zero-magnitude embedding for which
	// cosine similarity is undefined.
	ErrDegenerateVector = errors.New("zero-magnitude vector")

	// ErrProviderUnavailable indicates a search or geocode collaborator
	// failure. The core never retries; retry policy belongs to the caller.
	ErrProviderUnavailable = errors.New("provider unavailable")
)
