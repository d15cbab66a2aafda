package badger

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/lectern/core"
	"github.com/poiesic/lectern/storage"
)

// FactRepository implements storage.FactRepository for BadgerDB.
// Nodes live under book:, auth: and genr:; edges are empty-valued keys
// under the e: prefixes so that every traversal is a prefix scan.
type FactRepository struct {
	backend *Backend
}

var _ storage.FactRepository = (*FactRepository)(nil)

// NewFactRepository creates a new FactRepository.
func NewFactRepository(backend *Backend) (*FactRepository, error) {
	return &FactRepository{
		backend: backend,
	}, nil
}

// Close releases resources. FactRepository has no resources to release.
func (r *FactRepository) Close() error {
	return nil
}

// MergeBooks merges books, their genres and their author stubs.
func (r *FactRepository) MergeBooks(ctx context.Context, books ...*core.Book) error {
	for _, book := range books {
		if err := core.ValidateBook(book); err != nil {
			return err
		}
	}

	return r.backend.Update(ctx, func(tx *badger.Txn) error {
		for _, book := range books {
			merged := *book
			existing, err := readBook(tx, book.Id)
			if err != nil {
				return err
			}
			if existing != nil {
				// Edges are additive, so the tag lists are too
				merged.Genres = unionFold(existing.Genres, book.Genres)
				merged.Topics = unionFold(existing.Topics, book.Topics)
				merged.Locations = unionFold(existing.Locations, book.Locations)
			}
			if err := tx.Set(makeBookKey(merged.Id), storage.MarshalBook(&merged)); err != nil {
				return err
			}

			for _, name := range merged.Genres {
				if err := mergeGenre(tx, name, merged.Id); err != nil {
					return err
				}
			}
			for _, topic := range merged.Topics {
				if err := setEdge(tx, topicBooksPrefix, tagKey(topic), merged.Id); err != nil {
					return err
				}
			}
			for _, location := range merged.Locations {
				if err := setEdge(tx, locationBookPrefix, tagKey(location), merged.Id); err != nil {
					return err
				}
			}

			if strings.TrimSpace(merged.Author) != "" {
				author := &core.Author{Name: strings.TrimSpace(merged.Author)}
				if err := mergeAuthor(tx, author, false); err != nil {
					return err
				}
				if err := setEdge(tx, wroteEdgePrefix, author.Key(), merged.Id); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// MergeAuthors merges authors by lowercase name. Non-empty fields overwrite.
func (r *FactRepository) MergeAuthors(ctx context.Context, authors ...*core.Author) error {
	for _, author := range authors {
		if err := core.ValidateAuthor(author); err != nil {
			return err
		}
	}

	return r.backend.Update(ctx, func(tx *badger.Txn) error {
		for _, author := range authors {
			if err := mergeAuthor(tx, author, true); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetBook retrieves a single book by ID.
func (r *FactRepository) GetBook(ctx context.Context, id string) (*core.Book, error) {
	var result *core.Book
	err := r.backend.View(ctx, func(tx *badger.Txn) error {
		var err error
		result, err = readBook(tx, id)
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	})
	return result, err
}

// FindBookByTitle returns the shortest title containing fragment.
func (r *FactRepository) FindBookByTitle(ctx context.Context, fragment string) (*core.Book, error) {
	needle := strings.ToLower(strings.TrimSpace(fragment))
	if needle == "" {
		return nil, storage.ErrNotFound
	}

	var best *core.Book
	err := r.backend.View(ctx, func(tx *badger.Txn) error {
		return scanBooks(tx, func(book *core.Book) {
			if !strings.Contains(strings.ToLower(book.Title), needle) {
				return
			}
			if best == nil || len(book.Title) < len(best.Title) {
				best = book
			}
		})
	})
	if err != nil {
		return nil, err
	}
	if best == nil {
		return nil, storage.ErrNotFound
	}
	return best, nil
}

// SimilarBooks ranks books by the number of genres they share with bookID.
func (r *FactRepository) SimilarBooks(ctx context.Context, bookID string, limit int) ([]core.SimilarBook, error) {
	var results []core.SimilarBook
	err := r.backend.View(ctx, func(tx *badger.Txn) error {
		genres, err := edgeTargets(tx, belongsEdgePrefix, bookID)
		if err != nil {
			return err
		}

		overlap := make(map[string]int)
		for _, genre := range genres {
			others, err := edgeTargets(tx, genreBooksPrefix, genre)
			if err != nil {
				return err
			}
			for _, other := range others {
				if other != bookID {
					overlap[other]++
				}
			}
		}

		for id, count := range overlap {
			book, err := readBook(tx, id)
			if err != nil {
				return err
			}
			if book != nil {
				results = append(results, core.SimilarBook{Book: book, Overlap: count})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(results, func(a, b core.SimilarBook) int {
		if c := cmp.Compare(b.Overlap, a.Overlap); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Book.Rating, a.Book.Rating); c != 0 {
			return c
		}
		return cmp.Compare(a.Book.Title, b.Book.Title)
	})
	return truncate(results, limit), nil
}

// TopRatedBooks returns books rated strictly above minRating, best first.
func (r *FactRepository) TopRatedBooks(ctx context.Context, minRating float64, limit int) ([]*core.Book, error) {
	var results []*core.Book
	err := r.backend.View(ctx, func(tx *badger.Txn) error {
		return scanBooks(tx, func(book *core.Book) {
			if book.Rating > minRating {
				results = append(results, book)
			}
		})
	})
	if err != nil {
		return nil, err
	}
	sortByRating(results)
	return truncate(results, limit), nil
}

// FindAuthor prefers the longest author name mentioned in text, then falls
// back to the first author (by key) whose name contains text.
func (r *FactRepository) FindAuthor(ctx context.Context, text string) (*core.Author, []*core.Book, error) {
	needle := strings.ToLower(strings.TrimSpace(text))
	if needle == "" {
		return nil, nil, storage.ErrNotFound
	}

	var (
		author *core.Author
		books  []*core.Book
	)
	err := r.backend.View(ctx, func(tx *badger.Txn) error {
		var mentioned, containing *core.Author
		err := scanPrefix(tx, []byte(authorPrefix+":"), func(item *badger.Item) error {
			return item.Value(func(val []byte) error {
				a, err := storage.UnmarshalAuthor(val)
				if err != nil {
					return err
				}
				key := a.Key()
				switch {
				case strings.Contains(needle, key):
					if mentioned == nil || len(key) > len(mentioned.Key()) {
						mentioned = a
					}
				case containing == nil && strings.Contains(key, needle):
					containing = a
				}
				return nil
			})
		})
		if err != nil {
			return err
		}

		author = mentioned
		if author == nil {
			author = containing
		}
		if author == nil {
			return storage.ErrNotFound
		}

		ids, err := edgeTargets(tx, wroteEdgePrefix, author.Key())
		if err != nil {
			return err
		}
		for _, id := range ids {
			book, err := readBook(tx, id)
			if err != nil {
				return err
			}
			if book != nil {
				books = append(books, book)
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	slices.SortFunc(books, func(a, b *core.Book) int {
		if c := cmp.Compare(a.PublishYear, b.PublishYear); c != 0 {
			return c
		}
		return cmp.Compare(a.Title, b.Title)
	})
	return author, books, nil
}

// TopGenres counts BELONGS_TO edges per genre.
func (r *FactRepository) TopGenres(ctx context.Context, limit int) ([]core.GenreCount, int, error) {
	var (
		counts []core.GenreCount
		total  int
	)
	err := r.backend.View(ctx, func(tx *badger.Txn) error {
		return scanPrefix(tx, []byte(genrePrefix+":"), func(item *badger.Item) error {
			key := string(item.Key()[len(genrePrefix)+1:])
			var name string
			if err := item.Value(func(val []byte) error {
				name = string(val)
				return nil
			}); err != nil {
				return err
			}
			n, err := countPrefix(tx, makePartialEdgeKey(genreBooksPrefix, key))
			if err != nil {
				return err
			}
			if n > 0 {
				counts = append(counts, core.GenreCount{Name: name, Count: n})
				total += n
			}
			return nil
		})
	})
	if err != nil {
		return nil, 0, err
	}

	slices.SortFunc(counts, func(a, b core.GenreCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return truncate(counts, limit), total, nil
}

// BooksByTopic returns books tagged with topic, best rated first.
func (r *FactRepository) BooksByTopic(ctx context.Context, topic string) ([]*core.Book, error) {
	return r.booksByTag(ctx, topicBooksPrefix, topic)
}

// BooksByLocation returns books tagged with location, best rated first.
func (r *FactRepository) BooksByLocation(ctx context.Context, location string) ([]*core.Book, error) {
	return r.booksByTag(ctx, locationBookPrefix, location)
}

// Locations returns every distinct location tag, sorted.
func (r *FactRepository) Locations(ctx context.Context) ([]string, error) {
	var locations []string
	err := r.backend.View(ctx, func(tx *badger.Txn) error {
		prefix := []byte(locationBookPrefix + ":")
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Seek(prefix); iter.ValidForPrefix(prefix); iter.Next() {
			rest := iter.Item().Key()[len(prefix):]
			end := slices.Index(rest, keySep)
			if end < 0 {
				continue
			}
			location := string(rest[:end])
			if len(locations) == 0 || locations[len(locations)-1] != location {
				locations = append(locations, location)
			}
		}
		return nil
	})
	return locations, err
}

func (r *FactRepository) booksByTag(ctx context.Context, prefix, tag string) ([]*core.Book, error) {
	key := tagKey(tag)
	if key == "" {
		return nil, nil
	}

	var results []*core.Book
	err := r.backend.View(ctx, func(tx *badger.Txn) error {
		ids, err := edgeTargets(tx, prefix, key)
		if err != nil {
			return err
		}
		for _, id := range ids {
			book, err := readBook(tx, id)
			if err != nil {
				return err
			}
			if book != nil {
				results = append(results, book)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortByRating(results)
	return results, nil
}

// Helper methods

// tagKey is the merge key shared by genres, topics and locations.
func tagKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// unionFold appends names from b not already in a, comparing by tag key.
func unionFold(a, b []string) []string {
	out := slices.Clone(a)
	for _, name := range b {
		if !slices.ContainsFunc(out, func(s string) bool { return tagKey(s) == tagKey(name) }) {
			out = append(out, name)
		}
	}
	return out
}

func mergeGenre(tx *badger.Txn, name, bookID string) error {
	genre := &core.Genre{Name: strings.TrimSpace(name)}
	key := genre.Key()
	if key == "" {
		return nil
	}
	if _, err := tx.Get(makeGenreKey(key)); err == badger.ErrKeyNotFound {
		if err := tx.Set(makeGenreKey(key), []byte(genre.Name)); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}
	if err := setEdge(tx, belongsEdgePrefix, bookID, key); err != nil {
		return err
	}
	return setEdge(tx, genreBooksPrefix, key, bookID)
}

// mergeAuthor creates the author if absent. With overwrite set, non-empty
// fields of author replace stored ones.
func mergeAuthor(tx *badger.Txn, author *core.Author, overwrite bool) error {
	key := makeAuthorKey(author.Key())
	existing, err := readAuthor(tx, key)
	if err != nil {
		return err
	}
	if existing != nil && !overwrite {
		return nil
	}

	merged := *author
	if existing != nil {
		merged.Name = cmp.Or(strings.TrimSpace(author.Name), existing.Name)
		merged.BirthYear = cmp.Or(author.BirthYear, existing.BirthYear)
		merged.DeathYear = cmp.Or(author.DeathYear, existing.DeathYear)
		merged.Bio = cmp.Or(author.Bio, existing.Bio)
	}
	return tx.Set(key, storage.MarshalAuthor(&merged))
}

func setEdge(tx *badger.Txn, prefix, from, to string) error {
	if from == "" || to == "" {
		return nil
	}
	return tx.Set(makeEdgeKey(prefix, from, to), []byte{})
}

// edgeTargets lists the "to" side of every edge leaving from.
func edgeTargets(tx *badger.Txn, prefix, from string) ([]string, error) {
	partial := makePartialEdgeKey(prefix, from)
	var targets []string
	err := scanPrefix(tx, partial, func(item *badger.Item) error {
		targets = append(targets, edgeTarget(item.Key(), partial))
		return nil
	})
	return targets, err
}

func scanBooks(tx *badger.Txn, fn func(book *core.Book)) error {
	return scanPrefix(tx, []byte(bookPrefix+":"), func(item *badger.Item) error {
		return item.Value(func(val []byte) error {
			book, err := storage.UnmarshalBook(val)
			if err != nil {
				return err
			}
			fn(book)
			return nil
		})
	})
}

func sortByRating(books []*core.Book) {
	slices.SortFunc(books, func(a, b *core.Book) int {
		if c := cmp.Compare(b.Rating, a.Rating); c != 0 {
			return c
		}
		return cmp.Compare(a.Title, b.Title)
	})
}

func truncate[T any](s []T, limit int) []T {
	if limit > 0 && len(s) > limit {
		return s[:limit]
	}
	return s
}

// readBook reads a book, returning nil if absent.
func readBook(tx *badger.Txn, id string) (*core.Book, error) {
	item, err := tx.Get(makeBookKey(id))
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var book *core.Book
	err = item.Value(func(val []byte) error {
		var err error
		book, err = storage.UnmarshalBook(val)
		return err
	})
	return book, err
}

// readAuthor reads an author, returning nil if absent.
func readAuthor(tx *badger.Txn, key []byte) (*core.Author, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var author *core.Author
	err = item.Value(func(val []byte) error {
		var err error
		author, err = storage.UnmarshalAuthor(val)
		return err
	})
	return author, err
}
