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

package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/lectern/ai"
	"github.com/poiesic/lectern/core"
	"github.com/poiesic/lectern/storage"
)

// DefaultThreshold is the minimum cosine similarity for two queries to share a record.
const DefaultThreshold float32 = 0.90

// Store is the semantic cache. It owns the lifecycle of query and result
// records; callers only pass text and results in and get display fields out.
type Store struct {
	repository storage.QueryRepository
	embedder   ai.Embedder
	threshold  float32
	logger     *slog.Logger
}

// Option configures a Store.
type Option func(*Store) error

// WithThreshold sets the similarity threshold used when creating queries.
// Default is DefaultThreshold.
func WithThreshold(threshold float32) Option {
	return func(s *Store) error {
		if threshold <= 0 || threshold > 1 {
			return ErrInvalidThreshold
		}
		s.threshold = threshold
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewStore creates a semantic cache over repository.
func NewStore(repository storage.QueryRepository, embedder ai.Embedder, opts ...Option) (*Store, error) {
	if repository == nil {
		return nil, ErrQueryRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	s := &Store{
		repository: repository,
		embedder:   embedder,
		threshold:  DefaultThreshold,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "cache")

	return s, nil
}

// Threshold returns the similarity threshold in effect.
func (s *Store) Threshold() float32 {
	return s.threshold
}

// FindSimilarQuery returns the most similar query record if it reaches the
// threshold, or nil.
func (s *Store) FindSimilarQuery(ctx context.Context, vector []float32) (*core.QueryRecord, error) {
	match, err := s.repository.FindSimilarQuery(ctx, vector, s.threshold)
	if err != nil {
		return nil, err
	}
	if match == nil {
		return nil, nil
	}
	s.logger.Debug("similar query found", "normalized", match.Record.NormalizedText, "score", match.Score)
	return match.Record, nil
}

// GetOrCreateQuery returns the ID of the record that original maps to.
// An existing record within the threshold is reused; otherwise a record keyed
// by the normalized text is created, or returned if a concurrent caller won.
func (s *Store) GetOrCreateQuery(ctx context.Context, original string) (core.ID, error) {
	normalized := core.Normalize(original)
	if normalized == "" {
		return 0, fmt.Errorf("get or create query: %w", core.ErrEmptyNormalizedText)
	}

	vector, err := s.embedder.EmbedText(ctx, normalized)
	if err != nil {
		return 0, fmt.Errorf("embed query: %w", err)
	}

	existing, err := s.FindSimilarQuery(ctx, vector)
	if err != nil {
		return 0, fmt.Errorf("find similar query: %w", err)
	}
	if existing != nil {
		return existing.Id, nil
	}

	record, err := s.repository.CreateQueryIfAbsent(ctx, &core.QueryRecord{
		NormalizedText: normalized,
		OriginalText:   original,
		Vector:         vector,
	})
	if err != nil {
		return 0, fmt.Errorf("create query: %w", err)
	}
	s.logger.Debug("query resolved", "normalized", normalized, "id", record.Id)
	return record.Id, nil
}

// SaveResults attaches results to the query original maps to. Results without
// a URL have no identity and are skipped.
func (s *Store) SaveResults(ctx context.Context, original string, results []core.EmbeddedResult) error {
	queryID, err := s.GetOrCreateQuery(ctx, original)
	if err != nil {
		return err
	}

	records := make([]*core.ResultRecord, 0, len(results))
	for _, r := range results {
		if r.URL == "" {
			s.logger.Debug("skipping result without url", "title", r.Title)
			continue
		}
		records = append(records, &core.ResultRecord{
			URL:     r.URL,
			Title:   r.Title,
			Content: r.Content,
			Vector:  r.Vector,
		})
	}
	if len(records) == 0 {
		return nil
	}

	if err := s.repository.SaveResults(ctx, queryID, records...); err != nil {
		return fmt.Errorf("save results: %w", err)
	}
	s.logger.Debug("results cached", "query_id", queryID, "count", len(records))
	return nil
}

// GetCachedResults returns the results cached for the exact normalized form of
// original. It never consults similarity. The slice is empty, not nil, on a miss.
func (s *Store) GetCachedResults(ctx context.Context, original string) ([]core.WebResult, error) {
	normalized := core.Normalize(original)
	results := []core.WebResult{}
	if normalized == "" {
		return results, nil
	}

	record, err := s.repository.FindQueryByText(ctx, normalized)
	if errors.Is(err, storage.ErrNotFound) {
		return results, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find query: %w", err)
	}

	records, err := s.repository.GetResultsForQuery(ctx, record.Id)
	if err != nil {
		return nil, fmt.Errorf("get results: %w", err)
	}
	for _, r := range records {
		results = append(results, core.WebResult{Title: r.Title, Content: r.Content, URL: r.URL})
	}
	return results, nil
}

// Queries lists every cached query record.
func (s *Store) Queries(ctx context.Context) ([]*core.QueryRecord, error) {
	return s.repository.GetAllQueries(ctx)
}

// ResultsFor lists the results linked to a query record.
func (s *Store) ResultsFor(ctx context.Context, id core.ID) ([]*core.ResultRecord, error) {
	return s.repository.GetResultsForQuery(ctx, id)
}
