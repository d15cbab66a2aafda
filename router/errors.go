package router

import "errors"

var (
	// ErrBookResolverRequired is returned when a book resolver is not provided.
	ErrBookResolverRequired = errors.New("book resolver required")

	// ErrCacheRequired is returned when a result cache is not provided.
	ErrCacheRequired = errors.New("result cache required")

	// ErrSearchRequired is returned when a web search provider is not provided.
	ErrSearchRequired = errors.New("web search provider required")

	// ErrAssemblerRequired is returned when a response assembler is not provided.
	ErrAssemblerRequired = errors.New("response assembler required")

	// ErrStepPanicked wraps a value recovered from a panicking step.
	ErrStepPanicked = errors.New("router step panicked")
)
