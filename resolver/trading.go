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
	"log/slog"
	"regexp"
	"strconv"

	"github.com/poiesic/lectern/core"
	"github.com/poiesic/lectern/storage"
)

// TradingName is the router state and classifier name of the trading resolver.
const TradingName = "trading"

const booksPerTopic = 5

var (
	tradingVocabulary = []string{
		"trading", "trader", "traders", "stock", "stocks", "forex", "crypto",
		"cryptocurrency", "bitcoin", "investing", "investment", "investments",
		"options", "day trading",
	}

	topPattern = regexp.MustCompile(`\btop (\d+)\b`)
)

// TradingTopic is a curated trading subject backed by a fact store topic tag.
type TradingTopic struct {
	Name        string
	Description string
	Tag         string
	Keywords    []string
}

// DefaultTradingTopics is the curated topic list, in display order.
var DefaultTradingTopics = []TradingTopic{
	{
		Name:        "Stock Market",
		Description: "How equity markets work and how to read and trade them.",
		Tag:         "stocks",
		Keywords:    []string{"stock", "stocks", "stock market", "equities", "shares"},
	},
	{
		Name:        "Day Trading",
		Description: "Short-term strategies that open and close positions within a session.",
		Tag:         "day trading",
		Keywords:    []string{"day trading", "day trader", "scalping"},
	},
	{
		Name:        "Cryptocurrency",
		Description: "Digital assets, blockchain markets and crypto trading strategies.",
		Tag:         "cryptocurrency",
		Keywords:    []string{"crypto", "cryptocurrency", "bitcoin", "blockchain"},
	},
	{
		Name:        "Forex",
		Description: "Currency pairs and the foreign exchange market.",
		Tag:         "forex",
		Keywords:    []string{"forex", "currency", "currencies"},
	},
	{
		Name:        "Options",
		Description: "Calls, puts and other derivative strategies.",
		Tag:         "options",
		Keywords:    []string{"options", "derivatives"},
	},
	{
		Name:        "Investing",
		Description: "Long-term value investing and portfolio building.",
		Tag:         "investing",
		Keywords:    []string{"investing", "investment", "investments", "investor", "value investing"},
	},
	{
		Name:        "Technical Analysis",
		Description: "Chart patterns, indicators and price action.",
		Tag:         "technical analysis",
		Keywords:    []string{"technical analysis", "charting", "indicators"},
	},
	{
		Name:        "Trading Psychology",
		Description: "Discipline, risk and the trader's mindset.",
		Tag:         "trading psychology",
		Keywords:    []string{"psychology", "mindset", "discipline"},
	},
}

// TradingResolver answers questions about trading and investing books.
type TradingResolver struct {
	facts  storage.FactRepository
	topics []TradingTopic
	logger *slog.Logger
}

var _ Specialized = (*TradingResolver)(nil)

// TradingOption configures a TradingResolver.
type TradingOption func(*TradingResolver)

// WithTopics replaces the curated topic list.
func WithTopics(topics []TradingTopic) TradingOption {
	return func(r *TradingResolver) {
		r.topics = topics
	}
}

// WithTradingLogger sets a custom logger.
func WithTradingLogger(logger *slog.Logger) TradingOption {
	return func(r *TradingResolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewTradingResolver creates a trading resolver over facts.
func NewTradingResolver(facts storage.FactRepository, opts ...TradingOption) (*TradingResolver, error) {
	if facts == nil {
		return nil, ErrFactRepositoryRequired
	}
	r := &TradingResolver{
		facts:  facts,
		topics: DefaultTradingTopics,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With("resolver", TradingName)
	return r, nil
}

// Name returns TradingName.
func (r *TradingResolver) Name() string {
	return TradingName
}

// Triggered reports whether the query uses trading vocabulary.
func (r *TradingResolver) Triggered(ctx context.Context, query string) bool {
	normalized := core.Normalize(query)
	for _, word := range tradingVocabulary {
		if containsPhrase(normalized, word) {
			return true
		}
	}
	return false
}

// Resolve returns the topics the query names, or every topic when it names
// none, each with its best rated books. "top N" caps the number of topics.
func (r *TradingResolver) Resolve(ctx context.Context, query string) (*core.SpecializedResult, error) {
	normalized := core.Normalize(query)

	selected := r.namedTopics(normalized)
	if len(selected) == 0 {
		selected = r.topics
	}
	if m := topPattern.FindStringSubmatch(normalized); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 && n < len(selected) {
			selected = selected[:n]
		}
	}

	result := &core.SpecializedResult{Resolver: TradingName, Topics: make([]core.TopicBooks, 0, len(selected))}
	for _, topic := range selected {
		books, err := r.facts.BooksByTopic(ctx, topic.Tag)
		if err != nil {
			return nil, err
		}
		result.Topics = append(result.Topics, core.TopicBooks{
			Name:        topic.Name,
			Description: topic.Description,
			Books:       bookTitles(truncate(books, booksPerTopic)),
		})
	}
	r.logger.Debug("resolved trading topics", "topics", len(result.Topics))
	return result, nil
}

func (r *TradingResolver) namedTopics(normalized string) []TradingTopic {
	var named []TradingTopic
	for _, topic := range r.topics {
		for _, kw := range topic.Keywords {
			if containsPhrase(normalized, kw) {
				named = append(named, topic)
				break
			}
		}
	}
	return named
}

func bookTitles(books []*core.Book) []core.BookTitle {
	titles := make([]core.BookTitle, 0, len(books))
	for _, b := range books {
		titles = append(titles, core.BookTitle{Title: b.Title, Author: b.Author, PublishYear: b.PublishYear})
	}
	return titles
}

func truncate[T any](s []T, limit int) []T {
	if limit > 0 && len(s) > limit {
		return s[:limit]
	}
	return s
}
