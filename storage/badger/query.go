package badger

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/lectern/core"
	"github.com/poiesic/lectern/storage"
)

// QueryRepository implements storage.QueryRepository for BadgerDB.
type QueryRepository struct {
	backend *Backend
}

var _ storage.QueryRepository = (*QueryRepository)(nil)

// NewQueryRepository creates a new QueryRepository.
func NewQueryRepository(backend *Backend) (*QueryRepository, error) {
	return &QueryRepository{
		backend: backend,
	}, nil
}

// Close releases resources. QueryRepository has no resources to release.
func (r *QueryRepository) Close() error {
	return nil
}

// FindSimilarQuery performs a brute-force cosine scan over every query
// record with an embedding.
func (r *QueryRepository) FindSimilarQuery(ctx context.Context, vector []float32, threshold float32) (*core.SearchResult, error) {
	if len(vector) == 0 {
		return nil, nil
	}

	var best *core.SearchResult
	err := r.backend.View(ctx, func(tx *badger.Txn) error {
		return scanPrefix(tx, []byte(queryRecordPrefix+":"), func(item *badger.Item) error {
			return item.Value(func(val []byte) error {
				record, err := storage.UnmarshalQueryRecord(val)
				if err != nil {
					return err
				}
				// Records without embeddings (or from another model) never match
				if len(record.Vector) != len(vector) {
					return nil
				}
				score := cosineSimilarity(vector, record.Vector)
				// NaN never compares above anything and would stick as best
				if math.IsNaN(float64(score)) {
					return nil
				}
				if best == nil || score > best.Score {
					best = &core.SearchResult{Record: record, Score: score}
				}
				return nil
			})
		})
	})
	if err != nil {
		return nil, err
	}

	if best == nil || !(best.Score >= threshold) {
		return nil, nil
	}
	return best, nil
}

// CreateQueryIfAbsent creates the record unless its normalized text is
// already indexed. The read of the text index and the writes happen in one
// transaction, so a concurrent creator either commits first (and this
// transaction is replayed and sees it) or conflicts.
func (r *QueryRepository) CreateQueryIfAbsent(ctx context.Context, record *core.QueryRecord) (*core.QueryRecord, error) {
	if err := core.ValidateQueryRecord(record); err != nil {
		return nil, err
	}

	candidate := *record
	candidate.Id = core.QueryID(candidate.NormalizedText)
	if candidate.InsertedAt.IsZero() {
		candidate.InsertedAt = time.Now().UTC()
	}

	var result *core.QueryRecord
	err := r.backend.Update(ctx, func(tx *badger.Txn) error {
		result = nil
		existing, err := readQueryByText(tx, candidate.NormalizedText)
		if err != nil {
			return err
		}
		if existing != nil {
			result = existing
			return nil
		}

		if err := tx.Set(makeQueryRecordKey(candidate.Id), storage.MarshalQueryRecord(&candidate)); err != nil {
			return err
		}
		if err := tx.Set(makeQueryTextKey(candidate.NormalizedText), storage.MarshalID(candidate.Id)); err != nil {
			return err
		}
		result = &candidate
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetQuery retrieves a single query record by ID.
func (r *QueryRepository) GetQuery(ctx context.Context, id core.ID) (*core.QueryRecord, error) {
	var result *core.QueryRecord
	err := r.backend.View(ctx, func(tx *badger.Txn) error {
		var err error
		result, err = readQueryRecord(tx, id)
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

// FindQueryByText finds a query record by its exact normalized text.
func (r *QueryRepository) FindQueryByText(ctx context.Context, normalized string) (*core.QueryRecord, error) {
	var result *core.QueryRecord
	err := r.backend.View(ctx, func(tx *badger.Txn) error {
		var err error
		result, err = readQueryByText(tx, normalized)
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

// GetAllQueries retrieves all query records in key order.
func (r *QueryRepository) GetAllQueries(ctx context.Context) ([]*core.QueryRecord, error) {
	var results []*core.QueryRecord
	err := r.backend.View(ctx, func(tx *badger.Txn) error {
		return scanPrefix(tx, []byte(queryRecordPrefix+":"), func(item *badger.Item) error {
			return item.Value(func(val []byte) error {
				record, err := storage.UnmarshalQueryRecord(val)
				if err != nil {
					return err
				}
				results = append(results, record)
				return nil
			})
		})
	})
	return results, err
}

// SaveResults upserts results by URL and links them to the query.
func (r *QueryRepository) SaveResults(ctx context.Context, queryID core.ID, results ...*core.ResultRecord) error {
	for _, result := range results {
		if err := core.ValidateResultRecord(result); err != nil {
			return err
		}
	}

	now := time.Now().UTC()
	return r.backend.Update(ctx, func(tx *badger.Txn) error {
		query, err := readQueryRecord(tx, queryID)
		if err != nil {
			return err
		}
		if query == nil {
			return fmt.Errorf("query %d: %w", queryID, storage.ErrNotFound)
		}

		links, err := countPrefix(tx, makePartialQueryResultKey(queryID))
		if err != nil {
			return err
		}

		for _, result := range results {
			record := *result
			record.Id = core.ResultID(record.URL)

			existing, err := readResultRecord(tx, record.Id)
			if err != nil {
				return err
			}
			switch {
			case existing != nil && existing.Title == record.Title && existing.Content == record.Content:
				// Unchanged content keeps its original fetch time
				record.FetchedAt = existing.FetchedAt
			case record.FetchedAt.IsZero():
				record.FetchedAt = now
			}

			if err := tx.Set(makeResultRecordKey(record.Id), storage.MarshalResultRecord(&record)); err != nil {
				return err
			}

			linkKey := makeQueryResultKey(queryID, record.Id)
			if _, err := tx.Get(linkKey); err == nil {
				continue
			} else if err != badger.ErrKeyNotFound {
				return err
			}
			if err := tx.Set(linkKey, storage.MarshalPosition(links)); err != nil {
				return err
			}
			links++
		}
		return nil
	})
}

// GetResultsForQuery returns the linked results in the order they were first linked.
func (r *QueryRepository) GetResultsForQuery(ctx context.Context, queryID core.ID) ([]*core.ResultRecord, error) {
	type linked struct {
		pos    int
		record *core.ResultRecord
	}
	var found []linked

	err := r.backend.View(ctx, func(tx *badger.Txn) error {
		partial := makePartialQueryResultKey(queryID)
		return scanPrefix(tx, partial, func(item *badger.Item) error {
			key := item.Key()
			if len(key) != len(partial)+8 {
				return nil
			}
			resultID := core.ID(binary.BigEndian.Uint64(key[len(partial):]))

			var pos int
			if err := item.Value(func(val []byte) error {
				var err error
				pos, err = storage.UnmarshalPosition(val)
				return err
			}); err != nil {
				return err
			}

			record, err := readResultRecord(tx, resultID)
			if err != nil {
				return err
			}
			if record != nil {
				found = append(found, linked{pos: pos, record: record})
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(found, func(a, b linked) int {
		return a.pos - b.pos
	})
	results := make([]*core.ResultRecord, 0, len(found))
	for _, l := range found {
		results = append(results, l.record)
	}
	return results, nil
}

// GetAllResults retrieves all result records in key order.
func (r *QueryRepository) GetAllResults(ctx context.Context) ([]*core.ResultRecord, error) {
	var results []*core.ResultRecord
	err := r.backend.View(ctx, func(tx *badger.Txn) error {
		return scanPrefix(tx, []byte(resultRecordPrefix+":"), func(item *badger.Item) error {
			return item.Value(func(val []byte) error {
				record, err := storage.UnmarshalResultRecord(val)
				if err != nil {
					return err
				}
				results = append(results, record)
				return nil
			})
		})
	})
	return results, err
}

// CountLinks counts association keys between a query and a result.
func (r *QueryRepository) CountLinks(ctx context.Context, queryID, resultID core.ID) (int, error) {
	var count int
	err := r.backend.View(ctx, func(tx *badger.Txn) error {
		partial := makePartialQueryResultKey(queryID)
		want := makeQueryResultKey(queryID, resultID)
		return scanPrefix(tx, partial, func(item *badger.Item) error {
			if bytes.Equal(item.Key(), want) {
				count++
			}
			return nil
		})
	})
	return count, err
}

// Helper methods

// scanPrefix calls fn for every item whose key starts with prefix.
func scanPrefix(tx *badger.Txn, prefix []byte, fn func(item *badger.Item) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	iter := tx.NewIterator(opts)
	defer iter.Close()

	for iter.Seek(prefix); iter.ValidForPrefix(prefix); iter.Next() {
		if err := fn(iter.Item()); err != nil {
			return err
		}
	}
	return nil
}

// countPrefix counts keys with the given prefix without fetching values.
func countPrefix(tx *badger.Txn, prefix []byte) (int, error) {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchValues = false
	iter := tx.NewIterator(opts)
	defer iter.Close()

	count := 0
	for iter.Seek(prefix); iter.ValidForPrefix(prefix); iter.Next() {
		count++
	}
	return count, nil
}

// readQueryRecord reads a query record, returning nil if absent.
func readQueryRecord(tx *badger.Txn, id core.ID) (*core.QueryRecord, error) {
	item, err := tx.Get(makeQueryRecordKey(id))
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var record *core.QueryRecord
	err = item.Value(func(val []byte) error {
		var err error
		record, err = storage.UnmarshalQueryRecord(val)
		return err
	})
	return record, err
}

// readQueryByText resolves the text index, returning nil if absent.
func readQueryByText(tx *badger.Txn, normalized string) (*core.QueryRecord, error) {
	item, err := tx.Get(makeQueryTextKey(normalized))
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var id core.ID
	err = item.Value(func(val []byte) error {
		id, err = storage.UnmarshalID(val)
		return err
	})
	if err != nil {
		return nil, err
	}
	return readQueryRecord(tx, id)
}

// readResultRecord reads a result record, returning nil if absent.
func readResultRecord(tx *badger.Txn, id core.ID) (*core.ResultRecord, error) {
	item, err := tx.Get(makeResultRecordKey(id))
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var record *core.ResultRecord
	err = item.Value(func(val []byte) error {
		var err error
		record, err = storage.UnmarshalResultRecord(val)
		return err
	})
	return record, err
}
