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

package websearch

import (
	"context"
	"strings"

	"github.com/poiesic/lectern/core"
)

// MaxResults is the most results any provider hands back.
const MaxResults = 5

// QueryPrefix is prepended to every query sent by Books.
const QueryPrefix = "book information"

// Provider executes a query and returns results.
type Provider interface {
	Search(ctx context.Context, query string) ([]core.WebResult, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, query string) ([]core.WebResult, error)

// Search calls f.
func (f ProviderFunc) Search(ctx context.Context, query string) ([]core.WebResult, error) {
	return f(ctx, query)
}

// Books scopes searches to book information.
type Books struct {
	provider Provider
}

// NewBooks wraps provider.
func NewBooks(provider Provider) (*Books, error) {
	if provider == nil {
		return nil, ErrProviderRequired
	}
	return &Books{provider: provider}, nil
}

// Search prefixes the query and cleans the provider's results.
func (b *Books) Search(ctx context.Context, query string) ([]core.WebResult, error) {
	results, err := b.provider.Search(ctx, strings.TrimSpace(QueryPrefix+" "+query))
	if err != nil {
		return nil, err
	}
	return CleanResults(results), nil
}

// CleanResults fills missing fields with defaults and keeps at most
// MaxResults. A missing title becomes "Untitled"; missing content and URL
// stay empty. The returned slice is never nil.
func CleanResults(results []core.WebResult) []core.WebResult {
	cleaned := make([]core.WebResult, 0, min(len(results), MaxResults))
	for _, r := range results {
		if len(cleaned) == MaxResults {
			break
		}
		title := strings.TrimSpace(r.Title)
		if title == "" {
			title = "Untitled"
		}
		cleaned = append(cleaned, core.WebResult{
			Title:   title,
			Content: strings.TrimSpace(r.Content),
			URL:     strings.TrimSpace(r.URL),
		})
	}
	return cleaned
}
