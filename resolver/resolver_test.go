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

	"github.com/stretchr/testify/require"

	"github.com/poiesic/lectern/core"
	"github.com/poiesic/lectern/storage"
	"github.com/poiesic/lectern/storage/badger"
)

func setupFacts(t *testing.T) storage.FactRepository {
	t.Helper()
	queries, facts, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		facts.Close()
		queries.Close()
		backend.Close()
	})

	ctx := context.Background()
	books := []*core.Book{
		{Id: "B1", Title: "Dune", Author: "Frank Herbert", Rating: 4.6, PublishYear: 1965, Genres: []string{"Science Fiction", "Adventure"}},
		{Id: "B2", Title: "Dune Messiah", Author: "Frank Herbert", Rating: 4.1, PublishYear: 1969, Genres: []string{"Science Fiction"}},
		{Id: "B3", Title: "Hyperion", Author: "Dan Simmons", Rating: 4.5, PublishYear: 1989, Genres: []string{"Science Fiction", "Adventure"}},
		{Id: "B4", Title: "The Hobbit", Author: "J.R.R. Tolkien", Rating: 4.7, PublishYear: 1937, Genres: []string{"Fantasy", "Adventure"}},
		{Id: "B5", Title: "A Moveable Feast", Author: "Ernest Hemingway", Rating: 4.0, PublishYear: 1964, Genres: []string{"Memoir"}, Locations: []string{"Paris"}},
		{Id: "B6", Title: "The Intelligent Investor", Author: "Benjamin Graham", Rating: 4.3, PublishYear: 1949, Genres: []string{"Finance"}, Topics: []string{"Investing", "Stocks"}},
		{Id: "B7", Title: "The Bitcoin Standard", Author: "Saifedean Ammous", Rating: 3.9, PublishYear: 2018, Genres: []string{"Finance"}, Topics: []string{"Cryptocurrency"}},
		{Id: "B8", Title: "Les Miserables", Author: "Victor Hugo", Rating: 4.2, PublishYear: 1862, Genres: []string{"Classic"}, Locations: []string{"Paris"}},
		{Id: "B9", Title: "The Hunchback of Notre-Dame", Author: "Victor Hugo", Rating: 3.9, PublishYear: 1831, Genres: []string{"Classic"}, Locations: []string{"Paris"}},
	}
	require.NoError(t, facts.MergeBooks(ctx, books...))
	require.NoError(t, facts.MergeAuthors(ctx, &core.Author{
		Name: "Frank Herbert", BirthYear: "1920", DeathYear: "1986", Bio: "American science fiction author.",
	}))
	return facts
}
