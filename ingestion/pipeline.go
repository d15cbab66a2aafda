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
	"log/slog"
	"runtime"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/lectern/ai"
	"github.com/poiesic/lectern/core"
)

// Saver persists embedded results under the query that produced them.
// *cache.Store satisfies it.
type Saver interface {
	SaveResults(ctx context.Context, query string, results []core.EmbeddedResult) error
}

// Pipeline embeds web results and hands them to a Saver.
type Pipeline struct {
	saver         Saver
	embedder      ai.Embedder
	embeddingPool *ants.Pool
	embeddingProc *embeddingProcessor
	logger        *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent embedding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		if p.embeddingPool != nil {
			p.embeddingPool.Release()
		}
		p.embeddingPool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(saver Saver, embedder ai.Embedder, opts ...Option) (*Pipeline, error) {
	if saver == nil {
		return nil, ErrSaverRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	poolSize := max(runtime.NumCPU()/2, 1)
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		saver:         saver,
		embedder:      embedder,
		embeddingPool: pool,
		logger:        slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	p.logger = p.logger.With("component", "ingestion")
	p.embeddingProc = newEmbeddingProcessor(embedder, p.embeddingPool, p.logger)
	return p, nil
}

// Ingest embeds results and caches them under query. It returns once the
// results are saved. Empty input is a no-op.
func (p *Pipeline) Ingest(ctx context.Context, query string, results []core.WebResult) error {
	if len(results) == 0 {
		return nil
	}

	embedded, err := p.embeddingProc.process(ctx, results)
	if err != nil {
		p.logger.Error("error embedding results", "err", err)
		return err
	}

	if err := p.saver.SaveResults(ctx, query, embedded); err != nil {
		p.logger.Error("error saving results", "err", err)
		return err
	}

	p.logger.Info("ingested results", "results", len(embedded))
	return nil
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.embeddingPool != nil {
		p.embeddingPool.Release()
	}
}
