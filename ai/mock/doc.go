// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Embedder, ai.Extractor,
// ai.ConflictJudge, and ai.Provider for use in unit tests. The mocks allow
// tests to run without external AI service dependencies and enable
// controlled, deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	mockProvider := mock.NewMockProvider()
//	extraction, err := mockProvider.Extractor().ExtractAtoms(ctx, "text", "capsule")
//
//	// Custom behavior injection
//	mockEmbedder := mock.NewMockEmbedder()
//	mockEmbedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
//	    return [][]float32{{1, 0, 0}}, nil
//	}
//
//	// Check call counts
//	count := mockEmbedder.CallCount()
//
// # Default Behavior
//
// The mock implementations provide sensible defaults:
//
//   - MockEmbedder: Returns deterministic unit vectors based on text hash
//   - MockExtractor: Produces one atom per sentence with keyword kinds
//   - MockJudge: Flags identical statements as duplicates and mismatched
//     negation as conflicts
//   - MockProvider: Aggregates the three mocks
package mock
