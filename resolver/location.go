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

package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/poiesic/lectern/core"
	"github.com/poiesic/lectern/storage"
)

// LocationName is the router state and classifier name of the location resolver.
const LocationName = "location"

const uncategorized = "General"

var (
	// Patterns run on normalized text and capture the place that follows.
	setInPattern      = regexp.MustCompile(`\bset in (?:the )?(.+)`)
	historyPattern    = regexp.MustCompile(`\bhistory of (?:the )?(.+)`)
	travelPattern     = regexp.MustCompile(`\btravel(?:ing|ling|s)? (?:to|in|through|around) (?:the )?(.+)`)
	booksAboutPattern = regexp.MustCompile(`\bbooks? about (?:the )?(.+)`)
)

// LocationResolver answers questions about books set in or about a place.
type LocationResolver struct {
	facts  storage.FactRepository
	logger *slog.Logger
}

var _ Specialized = (*LocationResolver)(nil)

// LocationOption configures a LocationResolver.
type LocationOption func(*LocationResolver)

// WithLocationLogger sets a custom logger.
func WithLocationLogger(logger *slog.Logger) LocationOption {
	return func(r *LocationResolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewLocationResolver creates a location resolver over facts.
func NewLocationResolver(facts storage.FactRepository, opts ...LocationOption) (*LocationResolver, error) {
	if facts == nil {
		return nil, ErrFactRepositoryRequired
	}
	r := &LocationResolver{facts: facts, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With("resolver", LocationName)
	return r, nil
}

// Name returns LocationName.
func (r *LocationResolver) Name() string {
	return LocationName
}

// Triggered matches "set in", "history of" and travel phrasing, and
// "books about X" when X is a known location.
func (r *LocationResolver) Triggered(ctx context.Context, query string) bool {
	normalized := core.Normalize(query)
	switch {
	case containsPhrase(normalized, "set in"),
		containsPhrase(normalized, "history of"),
		strings.Contains(normalized, "travel"):
		return true
	}

	m := booksAboutPattern.FindStringSubmatch(normalized)
	if m == nil {
		return false
	}
	return r.knownLocation(ctx, m[1]) != ""
}

// Resolve finds the place the query is about and groups its books by genre.
func (r *LocationResolver) Resolve(ctx context.Context, query string) (*core.SpecializedResult, error) {
	normalized := core.Normalize(query)
	result := &core.SpecializedResult{Resolver: LocationName}

	location := r.knownLocation(ctx, normalized)
	if location == "" {
		location = capturePlace(normalized)
	}
	if location == "" {
		r.logger.Debug("no location in query")
		return result, nil
	}
	result.Location = location

	books, err := r.facts.BooksByLocation(ctx, location)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int)
	for _, b := range books {
		genre := uncategorized
		if len(b.Genres) > 0 {
			genre = b.Genres[0]
		}
		key := strings.ToLower(genre)
		i, ok := index[key]
		if !ok {
			i = len(result.Categories)
			index[key] = i
			result.Categories = append(result.Categories, core.TopicBooks{
				Name:        genre,
				Description: fmt.Sprintf("%s books connected to %s", genre, location),
			})
		}
		result.Categories[i].Books = append(result.Categories[i].Books,
			core.BookTitle{Title: b.Title, Author: b.Author, PublishYear: b.PublishYear})
	}

	r.logger.Debug("resolved location", "location", location, "books", len(books))
	return result, nil
}

// knownLocation returns the longest gazetteer entry mentioned in text.
func (r *LocationResolver) knownLocation(ctx context.Context, text string) string {
	locations, err := r.facts.Locations(ctx)
	if err != nil {
		r.logger.Warn("error loading locations", "err", err)
		return ""
	}
	var best string
	for _, loc := range locations {
		if containsPhrase(text, loc) && len(loc) > len(best) {
			best = loc
		}
	}
	return best
}

func capturePlace(normalized string) string {
	for _, pattern := range []*regexp.Regexp{setInPattern, historyPattern, travelPattern} {
		if m := pattern.FindStringSubmatch(normalized); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}
