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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/lectern/core"
)

func TestTradingResolver_Triggered(t *testing.T) {
	r, err := NewTradingResolver(setupFacts(t))
	require.NoError(t, err)
	ctx := context.Background()

	for _, query := range []string{
		"Recommend books on cryptocurrency trading strategies",
		"best FOREX books?",
		"Top 10 trading topics and books",
		"I want to learn day trading",
	} {
		assert.True(t, r.Triggered(ctx, query), query)
	}
	for _, query := range []string{"books like Dune", "", "stockholm syndrome novels"} {
		assert.False(t, r.Triggered(ctx, query), query)
	}
}

func TestTradingResolver_NamedTopic(t *testing.T) {
	r, err := NewTradingResolver(setupFacts(t))
	require.NoError(t, err)

	result, err := r.Resolve(context.Background(), "Recommend books on cryptocurrency trading")
	require.NoError(t, err)
	assert.Equal(t, TradingName, result.Resolver)
	require.Len(t, result.Topics, 1)
	assert.Equal(t, "Cryptocurrency", result.Topics[0].Name)
	assert.Equal(t, []core.BookTitle{
		{Title: "The Bitcoin Standard", Author: "Saifedean Ammous", PublishYear: 2018},
	}, result.Topics[0].Books)
	assert.False(t, result.Empty())
}

func TestTradingResolver_TopN(t *testing.T) {
	r, err := NewTradingResolver(setupFacts(t))
	require.NoError(t, err)

	result, err := r.Resolve(context.Background(), "Top 3 trading topics and books")
	require.NoError(t, err)
	require.Len(t, result.Topics, 3)
	assert.Equal(t, "Stock Market", result.Topics[0].Name)
	assert.Equal(t, "Day Trading", result.Topics[1].Name)
	assert.Equal(t, "Cryptocurrency", result.Topics[2].Name)
	assert.Equal(t, "The Intelligent Investor", result.Topics[0].Books[0].Title)
	assert.Empty(t, result.Topics[1].Books)
}

func TestTradingResolver_AllTopics(t *testing.T) {
	r, err := NewTradingResolver(setupFacts(t))
	require.NoError(t, err)

	result, err := r.Resolve(context.Background(), "what should a trader read")
	require.NoError(t, err)
	assert.Len(t, result.Topics, len(DefaultTradingTopics))
}

func TestTradingResolver_NoBooks(t *testing.T) {
	r, err := NewTradingResolver(setupFacts(t), WithTopics([]TradingTopic{
		{Name: "Futures", Description: "Commodity futures.", Tag: "futures", Keywords: []string{"futures"}},
	}))
	require.NoError(t, err)

	result, err := r.Resolve(context.Background(), "futures trading")
	require.NoError(t, err)
	require.Len(t, result.Topics, 1)
	assert.True(t, result.Empty())
}

func TestNewTradingResolver_RequiresFacts(t *testing.T) {
	_, err := NewTradingResolver(nil)
	assert.ErrorIs(t, err, ErrFactRepositoryRequired)
}
