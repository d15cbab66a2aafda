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

package core

import (
	"encoding/binary"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is derived from entity content so that identical keys produce identical IDs.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// QueryRecord is one cached, semantically deduplicated query.
// Records are append-only: created once per distinct normalized text, never updated.
type QueryRecord struct {
	Id             ID
	NormalizedText string    // Unique key
	OriginalText   string    // First-seen raw form
	Vector         []float32 // Embedding of NormalizedText, fixed at creation
	InsertedAt     time.Time
}

// ResultRecord is one cached external result attached to one or more QueryRecords.
// Identity is the external identifier (the source URL).
type ResultRecord struct {
	Id        ID
	URL       string
	Title     string
	Content   string
	Vector    []float32 // Embedding of title + content
	FetchedAt time.Time
}

// ResultID returns the ID used for a result with the given external identifier.
func ResultID(url string) ID {
	return IDFromContent("result:" + url)
}

// QueryID returns the ID used for a query with the given normalized text.
func QueryID(normalized string) ID {
	return IDFromContent("query:" + normalized)
}

// WebResult is a single search result as seen by the router and assembler.
// It is also the display shape of a cached ResultRecord.
type WebResult struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	URL     string `json:"url"`
}

// EmbeddedResult is a WebResult enriched with its embedding, ready to be cached.
type EmbeddedResult struct {
	WebResult
	Vector []float32
}

// EmbeddingText returns the text embedded for a result.
func (r WebResult) EmbeddingText() string {
	return r.Title + "\n" + r.Content
}

// Book is a book node in the fact store.
type Book struct {
	Id          string
	Title       string
	Author      string
	Rating      float64
	PublishYear int
	Genres      []string
	Topics      []string // Subject tags used by specialized resolvers (e.g. "cryptocurrency")
	Locations   []string // Settings or subjects of place (e.g. "paris")
}

// Author is an author node in the fact store, keyed by lowercase name.
type Author struct {
	Name      string
	BirthYear string
	DeathYear string
	Bio       string
}

// Key returns the unique merge key of the author.
func (a *Author) Key() string {
	return strings.ToLower(strings.TrimSpace(a.Name))
}

// Genre is a genre node in the fact store, keyed by lowercase name.
type Genre struct {
	Name string
}

// Key returns the unique merge key of the genre.
func (g *Genre) Key() string {
	return strings.ToLower(strings.TrimSpace(g.Name))
}

// GenreCount is a genre with the number of books linked to it.
type GenreCount struct {
	Name  string
	Count int
}

// SimilarBook is a book returned by a similarity read, with the genre overlap that ranked it.
type SimilarBook struct {
	Book    *Book
	Overlap int
}

// SearchResult represents a query record match with its cosine similarity.
type SearchResult struct {
	Record *QueryRecord
	Score  float32
}
