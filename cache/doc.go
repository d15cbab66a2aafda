// Copyright 2025 Poiesic Systems
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

// Package cache implements the semantic query cache.
//
// Queries are normalized and embedded. On the write path a new query reuses
// the most similar existing record when their cosine similarity reaches the
// threshold (0.90 by default), so near-duplicate phrasings share one record
// and its results. On the read path cached results are found by exact
// normalized text only, which keeps verbatim repeats cheap.
package cache
