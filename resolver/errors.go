package resolver

import "errors"

var (
	// ErrFactRepositoryRequired is returned when a fact repository is not provided.
	ErrFactRepositoryRequired = errors.New("fact repository required")

	// ErrDuplicateResolver is returned when two specialized resolvers share a name.
	ErrDuplicateResolver = errors.New("duplicate resolver name")

	// ErrReservedResolverName is returned when a resolver name is empty or
	// collides with a built-in router state.
	ErrReservedResolverName = errors.New("reserved resolver name")
)
