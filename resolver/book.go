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
	"errors"
	"log/slog"
	"regexp"
	"slices"
	"strings"

	"github.com/poiesic/lectern/core"
	"github.com/poiesic/lectern/storage"
)

const (
	similarLimit   = 3
	topRatedLimit  = 3
	topGenresLimit = 3
	minTopRating   = 4.0
)

var (
	recommendWords = []string{"recommend", "recommendation", "similar", "like", "suggest", "suggestion"}
	authorWords    = []string{"author", "wrote", "writer"}
	genreWords     = []string{"genre", "type", "category"}

	// Checked in order; the first match names the reference title.
	titlePatterns = []*regexp.Regexp{
		regexp.MustCompile(`similar to (?:the )?(.*?)(?:$|[.?,]|\sby\s)`),
		regexp.MustCompile(`like (?:the )?(.*?)(?:$|[.?,]|\sby\s)`),
		regexp.MustCompile(`recommend (?:books? )?(?:like|similar to) (?:the )?(.*?)(?:$|[.?,]|\sby\s)`),
		regexp.MustCompile(`books? similar to (?:the )?(.*?)(?:$|[.?,]|\sby\s)`),
	}

	authorPrefixes = []string{"who is", "tell me about"}
)

// BookResolver answers book questions from the fact store.
type BookResolver struct {
	facts  storage.FactRepository
	logger *slog.Logger
}

// BookOption configures a BookResolver.
type BookOption func(*BookResolver)

// WithBookLogger sets a custom logger.
func WithBookLogger(logger *slog.Logger) BookOption {
	return func(r *BookResolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewBookResolver creates a resolver over facts.
func NewBookResolver(facts storage.FactRepository, opts ...BookOption) (*BookResolver, error) {
	if facts == nil {
		return nil, ErrFactRepositoryRequired
	}
	r := &BookResolver{facts: facts, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With("resolver", "book")
	return r, nil
}

// Lookup inspects the query for recommendation, author and genre intents.
// Later intents override the result type of earlier ones; the facts are
// authoritative only when some intent produced a type.
func (r *BookResolver) Lookup(ctx context.Context, query string) (*core.GraphFacts, error) {
	words := tokens(query)
	facts := &core.GraphFacts{}

	if hasAny(words, recommendWords) {
		if err := r.recommend(ctx, query, facts); err != nil {
			return nil, err
		}
	}

	if hasAny(words, authorWords) {
		if err := r.author(ctx, query, facts); err != nil {
			return nil, err
		}
	}

	if hasAny(words, genreWords) {
		if err := r.genres(ctx, facts); err != nil {
			return nil, err
		}
	}

	r.logger.Debug("lookup complete", "type", facts.Type)
	return facts, nil
}

func (r *BookResolver) recommend(ctx context.Context, query string, facts *core.GraphFacts) error {
	title := extractTitle(query)
	if title == "" {
		books, err := r.facts.TopRatedBooks(ctx, minTopRating, topRatedLimit)
		if err != nil {
			return err
		}
		facts.Recommendations = make([]core.Recommendation, 0, len(books))
		for _, b := range books {
			facts.Recommendations = append(facts.Recommendations, core.Recommendation{
				Title:      b.Title,
				Author:     b.Author,
				Rating:     b.Rating,
				MatchScore: int(b.Rating * 100 / 5),
			})
		}
		facts.Type = core.GraphRecommendations
		return nil
	}

	r.logger.Debug("detected title in query", "title", title)
	book, err := r.facts.FindBookByTitle(ctx, title)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	similar, err := r.facts.SimilarBooks(ctx, book.Id, similarLimit)
	if err != nil || len(similar) == 0 {
		return err
	}

	facts.Recommendations = make([]core.Recommendation, 0, len(similar))
	for _, s := range similar {
		facts.Recommendations = append(facts.Recommendations, core.Recommendation{
			Title:      s.Book.Title,
			Author:     s.Book.Author,
			Rating:     s.Book.Rating,
			MatchScore: min(100, s.Overlap*100/3),
		})
	}
	facts.Type = core.GraphRecommendations
	facts.SearchTerm = title
	return nil
}

func (r *BookResolver) author(ctx context.Context, query string, facts *core.GraphFacts) error {
	text := strings.ToLower(query)
	for _, prefix := range authorPrefixes {
		text = strings.ReplaceAll(text, prefix, "")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	author, books, err := r.facts.FindAuthor(ctx, text)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	info := &core.AuthorFacts{
		Name:      author.Name,
		BirthYear: author.BirthYear,
		DeathYear: author.DeathYear,
		Bio:       author.Bio,
		Books:     make([]core.BookTitle, 0, len(books)),
	}
	for _, b := range books {
		info.Books = append(info.Books, core.BookTitle{Title: b.Title, PublishYear: b.PublishYear})
	}
	facts.Author = info
	facts.Type = core.GraphAuthor
	return nil
}

func (r *BookResolver) genres(ctx context.Context, facts *core.GraphFacts) error {
	counts, total, err := r.facts.TopGenres(ctx, topGenresLimit)
	if err != nil {
		return err
	}
	facts.Genres = make([]core.GenreShare, 0, len(counts))
	for _, g := range counts {
		share := core.GenreShare{Name: g.Name}
		if total > 0 {
			share.Percentage = g.Count * 100 / total
		}
		facts.Genres = append(facts.Genres, share)
	}
	facts.Type = core.GraphGenres
	return nil
}

// extractTitle pulls the reference title out of "books like X" style queries.
func extractTitle(query string) string {
	lowered := strings.ToLower(query)
	for _, pattern := range titlePatterns {
		if m := pattern.FindStringSubmatch(lowered); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

func hasAny(words, vocabulary []string) bool {
	return slices.ContainsFunc(words, func(w string) bool {
		return slices.Contains(vocabulary, w)
	})
}
