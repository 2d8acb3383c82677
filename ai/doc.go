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


// Package ai provides the text-embedding abstraction used across geosift.
//
// The Embedder interface maps text to fixed-length vectors for semantic
// similarity scoring. Pipeline stages depend on the interface only; the
// concrete model handle is acquired once at pipeline start and passed in
// explicitly so tests can substitute a stub encoder.
//
// Implementation sub-packages:
//
//   - ai/openai: production implementation using OpenAI-compatible APIs
//   - ai/mock: deterministic test doubles without external dependencies
//
// Production constructors return the interface type to prevent coupling to
// implementation details; mock constructors return concrete types so tests
// can inject behavior and assert on call counts.
package ai
