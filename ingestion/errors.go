package ingestion

import "errors"

var (
	// ErrSaverRequired is returned when a result saver is not provided.
	ErrSaverRequired = errors.New("result saver required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")
)
