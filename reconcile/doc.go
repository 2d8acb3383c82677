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


// Package reconcile cross-checks low-confidence failed searches against a
// reverse geocoder.
//
// For each row of the fail_poi cohort the reconciler fetches a reverse-geocoded
// place description, filters implausible candidates, re-scores embedding
// similarity between the candidate name and the original query, and labels the
// row with whichever source matched better. Reverse-geocode calls are strictly
// sequential; the external service's rate limit is the dominant latency cost of
// the whole pipeline and is honored, not optimized away.
package reconcile
