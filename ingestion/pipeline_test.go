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

package ingestion

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/lectern/ai/mock"
	"github.com/poiesic/lectern/cache"
	"github.com/poiesic/lectern/core"
	"github.com/poiesic/lectern/storage/badger"
)

// recordingSaver captures SaveResults calls.
type recordingSaver struct {
	mu      sync.Mutex
	query   string
	results []core.EmbeddedResult
	calls   int
	err     error
}

func (s *recordingSaver) SaveResults(ctx context.Context, query string, results []core.EmbeddedResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.query = query
	s.results = results
	return s.err
}

func sampleResults() []core.WebResult {
	return []core.WebResult{
		{Title: "Dune", Content: "Desert planet.", URL: "https://example.com/dune"},
		{Title: "Hyperion", Content: "Pilgrims.", URL: "https://example.com/hyperion"},
		{Title: "The Hobbit", Content: "There and back again.", URL: "https://example.com/hobbit"},
	}
}

func TestNewPipeline_RequiresCollaborators(t *testing.T) {
	_, err := NewPipeline(nil, mock.NewMockEmbedder())
	assert.ErrorIs(t, err, ErrSaverRequired)

	_, err = NewPipeline(&recordingSaver{}, nil)
	assert.ErrorIs(t, err, ErrEmbedderRequired)
}

func TestPipeline_Ingest(t *testing.T) {
	saver := &recordingSaver{}
	embedder := mock.NewMockEmbedder()
	p, err := NewPipeline(saver, embedder, WithPoolSize(2))
	require.NoError(t, err)
	defer p.Release()

	results := sampleResults()
	require.NoError(t, p.Ingest(context.Background(), "sci-fi classics", results))

	assert.Equal(t, 1, saver.calls)
	assert.Equal(t, "sci-fi classics", saver.query)
	require.Len(t, saver.results, len(results))
	for i, r := range saver.results {
		assert.Equal(t, results[i], r.WebResult, "order must be preserved")
		expected, _ := embedder.EmbedText(context.Background(), results[i].EmbeddingText())
		assert.Equal(t, expected, r.Vector)
	}
	assert.ElementsMatch(t, []string{
		"Dune\nDesert planet.",
		"Hyperion\nPilgrims.",
		"The Hobbit\nThere and back again.",
	}, embedder.Texts()[:3])
}

func TestPipeline_Ingest_EmptyIsNoop(t *testing.T) {
	saver := &recordingSaver{}
	p, err := NewPipeline(saver, mock.NewMockEmbedder())
	require.NoError(t, err)
	defer p.Release()

	require.NoError(t, p.Ingest(context.Background(), "q", nil))
	assert.Zero(t, saver.calls)
}

func TestPipeline_Ingest_EmbeddingFailureKeepsResult(t *testing.T) {
	saver := &recordingSaver{}
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		if text == "Hyperion\nPilgrims." {
			return nil, errors.New("embedding service down")
		}
		return []float32{1, 0}, nil
	}
	p, err := NewPipeline(saver, embedder)
	require.NoError(t, err)
	defer p.Release()

	require.NoError(t, p.Ingest(context.Background(), "q", sampleResults()))
	require.Len(t, saver.results, 3)
	assert.Equal(t, []float32{1, 0}, saver.results[0].Vector)
	assert.NotNil(t, saver.results[1].Vector)
	assert.Empty(t, saver.results[1].Vector)
	assert.Equal(t, []float32{1, 0}, saver.results[2].Vector)
}

func TestPipeline_Ingest_SaveError(t *testing.T) {
	boom := errors.New("disk full")
	p, err := NewPipeline(&recordingSaver{err: boom}, mock.NewMockEmbedder())
	require.NoError(t, err)
	defer p.Release()

	err = p.Ingest(context.Background(), "q", sampleResults())
	assert.ErrorIs(t, err, boom)
}

func TestPipeline_Ingest_AfterRelease(t *testing.T) {
	saver := &recordingSaver{}
	p, err := NewPipeline(saver, mock.NewMockEmbedder())
	require.NoError(t, err)
	p.Release()

	err = p.Ingest(context.Background(), "q", sampleResults())
	assert.Error(t, err)
	assert.Zero(t, saver.calls)
}

func TestPipeline_Ingest_IntoCache(t *testing.T) {
	queries, _, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	embedder := mock.NewMockEmbedder()
	store, err := cache.NewStore(queries, embedder)
	require.NoError(t, err)

	p, err := NewPipeline(store, embedder, WithPoolSize(4))
	require.NoError(t, err)
	defer p.Release()

	ctx := context.Background()
	require.NoError(t, p.Ingest(ctx, "Classic science fiction?", sampleResults()))

	cached, err := store.GetCachedResults(ctx, "classic science fiction")
	require.NoError(t, err)
	assert.Equal(t, sampleResults(), cached)
}
