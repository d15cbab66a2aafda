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

package lectern

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/lectern/ai"
	"github.com/poiesic/lectern/ai/openai"
	"github.com/poiesic/lectern/assemble"
	"github.com/poiesic/lectern/cache"
	"github.com/poiesic/lectern/core"
	"github.com/poiesic/lectern/ingestion"
	"github.com/poiesic/lectern/resolver"
	"github.com/poiesic/lectern/router"
	"github.com/poiesic/lectern/storage"
	"github.com/poiesic/lectern/storage/badger"
	"github.com/poiesic/lectern/telemetry"
	"github.com/poiesic/lectern/websearch"
)

// Lectern wires storage, AI services, web search and the router into a
// single question answering service.
type Lectern struct {
	backend   *badger.Backend
	queryRepo *badger.QueryRepository
	factRepo  *badger.FactRepository
	provider  ai.AIProvider
	telemetry *telemetry.Provider
	store     *cache.Store
	pipeline  *ingestion.Pipeline
	router    *router.Router
	logger    *slog.Logger
}

// Option configures a Lectern.
type Option func(*openOptions)

type openOptions struct {
	provider ai.AIProvider
	search   websearch.Provider
	monitor  router.Monitor
	logger   *slog.Logger
}

// WithAIProvider replaces the OpenAI-compatible provider built from the config.
func WithAIProvider(provider ai.AIProvider) Option {
	return func(o *openOptions) {
		o.provider = provider
	}
}

// WithSearchProvider replaces the Tavily client built from the config.
// Queries are still prefixed and results cleaned.
func WithSearchProvider(provider websearch.Provider) Option {
	return func(o *openOptions) {
		o.search = provider
	}
}

// WithMonitor sets a monitor observing every router run.
func WithMonitor(monitor router.Monitor) Option {
	return func(o *openOptions) {
		o.monitor = monitor
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *openOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// CachedQuery is a cached query with the results attached to it.
type CachedQuery struct {
	Query   *core.QueryRecord
	Results []*core.ResultRecord
}

// Open opens the database at cfg.DBPath and builds every component.
// A nil cfg uses DefaultConfig.
func Open(ctx context.Context, cfg *Config, opts ...Option) (_ *Lectern, err error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	options := &openOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(options)
	}
	if options.provider == nil {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	} else {
		cfg.Normalize()
	}

	l := &Lectern{logger: options.logger.With("component", "lectern")}
	defer func() {
		if err != nil {
			l.Close()
		}
	}()

	if l.backend, err = badger.OpenBackend(cfg.DBPath, false); err != nil {
		return nil, err
	}
	if l.queryRepo, err = badger.NewQueryRepository(l.backend); err != nil {
		return nil, err
	}
	if l.factRepo, err = badger.NewFactRepository(l.backend); err != nil {
		return nil, err
	}

	l.provider = options.provider
	if l.provider == nil {
		if l.provider, err = openai.NewProvider(&cfg.AI); err != nil {
			return nil, err
		}
	}

	if l.telemetry, err = telemetry.Init(ctx, cfg.Telemetry); err != nil {
		return nil, err
	}
	metrics, err := telemetry.NewMetrics(l.telemetry.Meter)
	if err != nil {
		return nil, err
	}

	if l.store, err = cache.NewStore(l.queryRepo, l.provider.Embedder(),
		cache.WithThreshold(cfg.Threshold), cache.WithLogger(options.logger)); err != nil {
		return nil, err
	}

	pipelineOpts := []ingestion.Option{ingestion.WithLogger(options.logger)}
	if cfg.IngestWorkers > 0 {
		pipelineOpts = append(pipelineOpts, ingestion.WithPoolSize(cfg.IngestWorkers))
	}
	if l.pipeline, err = ingestion.NewPipeline(l.store, l.provider.Embedder(), pipelineOpts...); err != nil {
		return nil, err
	}

	books, err := resolver.NewBookResolver(l.factRepo, resolver.WithBookLogger(options.logger))
	if err != nil {
		return nil, err
	}
	trading, err := resolver.NewTradingResolver(l.factRepo, resolver.WithTradingLogger(options.logger))
	if err != nil {
		return nil, err
	}
	location, err := resolver.NewLocationResolver(l.factRepo, resolver.WithLocationLogger(options.logger))
	if err != nil {
		return nil, err
	}
	classifier, err := resolver.NewClassifier(trading, location)
	if err != nil {
		return nil, err
	}

	search, err := websearch.NewBooks(newSearchProvider(cfg, options))
	if err != nil {
		return nil, err
	}

	l.router, err = router.New(books, l.store, search, assemble.NewAssembler(l.provider.Generator(), assemble.WithLogger(options.logger)),
		router.WithClassifier(classifier),
		router.WithIngester(l.pipeline),
		router.WithMonitor(options.monitor),
		router.WithTracer(l.telemetry.Tracer),
		router.WithMetrics(metrics),
		router.WithLogger(options.logger),
	)
	if err != nil {
		return nil, err
	}
	return l, nil
}

func newSearchProvider(cfg *Config, o *openOptions) websearch.Provider {
	if o.search != nil {
		return o.search
	}
	if cfg.Search.APIKey == "" {
		o.logger.Warn("no search API key configured, web fallback will apologize", "env", TavilyAPIKeyEnv)
	}
	tavilyOpts := []websearch.TavilyOption{
		websearch.WithDepth(cfg.Search.Depth),
		websearch.WithLogger(o.logger),
	}
	if cfg.Search.Endpoint != "" {
		tavilyOpts = append(tavilyOpts, websearch.WithEndpoint(cfg.Search.Endpoint))
	}
	return websearch.NewTavily(cfg.Search.APIKey, tavilyOpts...)
}

// Resolve answers a natural language question.
func (l *Lectern) Resolve(ctx context.Context, query string) (core.Answer, error) {
	return l.router.Resolve(ctx, query)
}

// Seed merges a catalog into the fact store. Entries are validated before
// anything is written.
func (l *Lectern) Seed(ctx context.Context, catalog *Catalog) error {
	authors, err := catalog.authors()
	if err != nil {
		return err
	}
	books, err := catalog.books()
	if err != nil {
		return err
	}

	if len(authors) > 0 {
		if err := l.factRepo.MergeAuthors(ctx, authors...); err != nil {
			return fmt.Errorf("seeding authors: %w", err)
		}
	}
	if len(books) > 0 {
		if err := l.factRepo.MergeBooks(ctx, books...); err != nil {
			return fmt.Errorf("seeding books: %w", err)
		}
	}
	l.logger.Info("catalog seeded", "authors", len(authors), "books", len(books))
	return nil
}

// CachedQueries lists every cached query with its results.
func (l *Lectern) CachedQueries(ctx context.Context) ([]CachedQuery, error) {
	queries, err := l.store.Queries(ctx)
	if err != nil {
		return nil, err
	}
	cached := make([]CachedQuery, 0, len(queries))
	for _, q := range queries {
		results, err := l.store.ResultsFor(ctx, q.Id)
		if err != nil {
			return nil, err
		}
		cached = append(cached, CachedQuery{Query: q, Results: results})
	}
	return cached, nil
}

// FactRepository returns the book fact store.
func (l *Lectern) FactRepository() storage.FactRepository {
	return l.factRepo
}

// Close releases every component. It is safe on a partially opened Lectern.
func (l *Lectern) Close() error {
	var errs []error

	if l.pipeline != nil {
		l.pipeline.Release()
	}
	if l.provider != nil {
		if err := l.provider.Close(); err != nil {
			l.logger.Error("error closing AI provider", "err", err)
		}
	}
	if l.telemetry != nil {
		if err := l.telemetry.Shutdown(context.Background()); err != nil {
			l.logger.Error("error shutting down telemetry", "err", err)
		}
	}
	if l.factRepo != nil {
		if err := l.factRepo.Close(); err != nil {
			l.logger.Error("error closing fact repository", "err", err)
			errs = append(errs, err)
		}
	}
	if l.queryRepo != nil {
		if err := l.queryRepo.Close(); err != nil {
			l.logger.Error("error closing query repository", "err", err)
			errs = append(errs, err)
		}
	}
	if l.backend != nil {
		if err := l.backend.Close(); err != nil {
			l.logger.Error("error closing backend storage", "err", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
