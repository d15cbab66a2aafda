package badger

import "github.com/poiesic/lectern/storage"

// NewMemoryRepositories creates in-memory query and fact repositories for testing.
// Returns queryRepo, factRepo, backend, and error.
// Caller must close both repos and backend when done.
func NewMemoryRepositories() (storage.QueryRepository, storage.FactRepository, *Backend, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, nil, nil, err
	}

	queryRepo, err := NewQueryRepository(backend)
	if err != nil {
		backend.Close()
		return nil, nil, nil, err
	}

	factRepo, err := NewFactRepository(backend)
	if err != nil {
		queryRepo.Close()
		backend.Close()
		return nil, nil, nil, err
	}

	return queryRepo, factRepo, backend, nil
}
