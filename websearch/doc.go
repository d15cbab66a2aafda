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

// Package websearch provides the open-web search collaborator.
//
// A Provider returns at most a handful of {title, content, url} results for a
// query. "No results" is an empty slice, never an error; errors mean the
// transport or the provider failed. Tavily is the production provider and
// Books decorates any provider with the book-domain query prefix.
package websearch
