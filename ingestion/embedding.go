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
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/lectern/ai"
	"github.com/poiesic/lectern/core"
)

// embeddingProcessor fans result embeddings out over a worker pool.
type embeddingProcessor struct {
	embedder ai.Embedder
	pool     *ants.Pool
	logger   *slog.Logger
}

func newEmbeddingProcessor(embedder ai.Embedder, pool *ants.Pool, logger *slog.Logger) *embeddingProcessor {
	if logger == nil {
		logger = slog.Default()
	}
	return &embeddingProcessor{
		embedder: embedder,
		pool:     pool,
		logger:   logger.With("processor", "embeddings"),
	}
}

// process embeds each result's title and content. Output order matches input.
// Failed embeddings leave an empty vector. An error is returned only when the
// pool refuses work.
func (ep *embeddingProcessor) process(ctx context.Context, results []core.WebResult) ([]core.EmbeddedResult, error) {
	embedded := make([]core.EmbeddedResult, len(results))
	var wg sync.WaitGroup

	for i, result := range results {
		embedded[i].WebResult = result
		wg.Add(1)
		err := ep.pool.Submit(func() {
			defer wg.Done()
			vector, err := ep.embedder.EmbedText(ctx, result.EmbeddingText())
			if err != nil {
				ep.logger.Warn("error embedding result", "url", result.URL, "err", err)
				embedded[i].Vector = []float32{}
				return
			}
			embedded[i].Vector = vector
		})
		if err != nil {
			wg.Done()
			wg.Wait()
			return nil, err
		}
	}

	wg.Wait()
	ep.logger.Debug("embedded results", "results", len(embedded))
	return embedded, nil
}
