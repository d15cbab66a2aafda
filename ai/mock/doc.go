// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Embedder, ai.Generator,
// and ai.AIProvider for use in unit tests. The mocks allow tests to run without
// external AI service dependencies and enable controlled, deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	mockProvider := mock.NewMockProvider()
//	vector, err := mockProvider.Embedder().EmbedText(ctx, "test")
//
//	// Pin vectors for specific texts to control similarity
//	mockEmbedder := mock.NewMockEmbedder()
//	mockEmbedder.Vectors["books like dune"] = []float32{1, 0, 0}
//
//	// Script the generator
//	mockGenerator := mock.NewMockGenerator("Here are some books.")
//	mockGenerator.Err = errors.New("model offline")
//
//	// Check call counts
//	count := mockEmbedder.CallCount()
//
// # Default Behavior
//
// The mock implementations provide sensible defaults:
//
//   - MockEmbedder: Returns deterministic unit vectors based on text hash
//   - MockGenerator: Returns its scripted response
//   - MockProvider: Aggregates mock embedder and generator
package mock
