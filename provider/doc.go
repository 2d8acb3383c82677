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


// Package provider abstracts the search backends used to validate candidate
// points of interest.
//
// Two implementations share the SearchProvider interface:
//   - WebSearch queries an external web-search API, optionally biased by the
//     caller's location, and filters out review aggregators and social sites.
//   - Catalog embeds the query and runs vector search against the locally
//     indexed POI catalog.
//
// The Registry caches provider instances by configuration identity so that
// expensive backends are constructed once per configuration.
package provider
