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


// Package pipeline prepares raw search records and partitions them into
// outcome/probability cohorts.
//
// The Preparer cleans raw records, derives embedding-similarity features
// between configured text fields, and computes query-list statistics. The
// Splitter partitions the enriched table into four cohorts by success flag
// and POI-probability threshold. Both stages log row counts after each
// filtering step for auditability; counts never drive control flow.
package pipeline
