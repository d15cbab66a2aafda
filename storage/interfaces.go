package storage

import (
	"context"

	"github.com/poiesic/lectern/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access. Each
// operation runs in its own transaction; multi-record writes such as
// SaveResults and MergeBooks are atomic on their own.
type Repository interface {
	// Close closes the storage backend and releases resources.
	Close() error
}

// QueryRepository persists semantically deduplicated queries and the
// external results cached for them. Records are append-only.
type QueryRepository interface {
	Repository

	// FindSimilarQuery scans every query record that has an embedding and
	// returns the single most similar one (cosine similarity), but only if
	// its score is >= threshold. Returns nil, nil when nothing qualifies.
	FindSimilarQuery(ctx context.Context, vector []float32, threshold float32) (*core.SearchResult, error)

	// CreateQueryIfAbsent atomically creates a query record keyed by its
	// normalized text. If a record with the same normalized text exists,
	// it is returned unchanged and the argument is discarded.
	// Thread-safe: concurrent creations converge on one surviving record.
	CreateQueryIfAbsent(ctx context.Context, record *core.QueryRecord) (*core.QueryRecord, error)

	// GetQuery retrieves a query record by ID.
	// Returns ErrNotFound if the record doesn't exist.
	GetQuery(ctx context.Context, id core.ID) (*core.QueryRecord, error)

	// FindQueryByText finds a query record by exact normalized text.
	// Returns ErrNotFound if no record exists.
	FindQueryByText(ctx context.Context, normalized string) (*core.QueryRecord, error)

	// GetAllQueries retrieves every query record.
	GetAllQueries(ctx context.Context) ([]*core.QueryRecord, error)

	// SaveResults upserts result records by URL and links each of them to
	// the query. Re-saving a URL updates title, content and vector in place;
	// the link is created at most once per (query, result) pair.
	// Returns ErrNotFound if the query doesn't exist.
	SaveResults(ctx context.Context, queryID core.ID, results ...*core.ResultRecord) error

	// GetResultsForQuery retrieves the result records linked to a query.
	// Returns an empty slice if the query has none or doesn't exist.
	GetResultsForQuery(ctx context.Context, queryID core.ID) ([]*core.ResultRecord, error)

	// GetAllResults retrieves every result record.
	GetAllResults(ctx context.Context) ([]*core.ResultRecord, error)

	// CountLinks returns the number of links between a query and a result.
	CountLinks(ctx context.Context, queryID, resultID core.ID) (int, error)
}

// FactRepository is a small property graph of books, authors and genres.
// Nodes are merged on their unique key (book id, lowercase author name,
// lowercase genre name); edges are created at most once.
type FactRepository interface {
	Repository

	// MergeBooks creates or updates books by ID. Each book's genres are
	// merged as Genre nodes linked with BELONGS_TO, and its author (if set)
	// is merged as an Author node linked with WROTE. Edges are additive.
	MergeBooks(ctx context.Context, books ...*core.Book) error

	// MergeAuthors creates or updates authors by lowercase name.
	MergeAuthors(ctx context.Context, authors ...*core.Author) error

	// GetBook retrieves a book by ID.
	// Returns ErrNotFound if the book doesn't exist.
	GetBook(ctx context.Context, id string) (*core.Book, error)

	// FindBookByTitle returns the book with the shortest title containing
	// fragment (case-insensitive). Returns ErrNotFound if none matches.
	FindBookByTitle(ctx context.Context, fragment string) (*core.Book, error)

	// SimilarBooks returns books sharing genres with the given book, ordered
	// by genre overlap then rating, excluding the book itself.
	SimilarBooks(ctx context.Context, bookID string, limit int) ([]core.SimilarBook, error)

	// TopRatedBooks returns books rated above minRating, best first.
	TopRatedBooks(ctx context.Context, minRating float64, limit int) ([]*core.Book, error)

	// FindAuthor returns the author whose name occurs in text, or failing
	// that, whose name contains text, together with the books they wrote.
	// Returns ErrNotFound if no author matches.
	FindAuthor(ctx context.Context, text string) (*core.Author, []*core.Book, error)

	// TopGenres returns genres by linked book count, largest first, and the
	// total number of book-genre links.
	TopGenres(ctx context.Context, limit int) ([]core.GenreCount, int, error)

	// BooksByTopic returns books tagged with the topic, best rated first.
	BooksByTopic(ctx context.Context, topic string) ([]*core.Book, error)

	// BooksByLocation returns books tagged with the location, best rated first.
	BooksByLocation(ctx context.Context, location string) ([]*core.Book, error)

	// Locations returns every distinct location tag, sorted.
	Locations(ctx context.Context) ([]string, error)
}
