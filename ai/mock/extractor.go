package mock

import (
	"context"
	"strings"

	"github.com/poiesic/stratum/ai"
)

// MockExtractor is a test double for ai.Extractor.
// It allows custom behavior injection via function fields.
type MockExtractor struct {
	// ExtractAtomsFunc is called by ExtractAtoms if set.
	// If nil, uses default sentence-based extraction.
	ExtractAtomsFunc func(ctx context.Context, text, capsuleID string) (*ai.Extraction, error)

	callCount int
}

// NewMockExtractor creates a mock extractor with default behavior.
func NewMockExtractor() *MockExtractor {
	return &MockExtractor{}
}

// ExtractAtoms produces one candidate atom per sentence with a keyword-based
// kind guess. Default behavior is deterministic for a given text.
func (m *MockExtractor) ExtractAtoms(ctx context.Context, text, capsuleID string) (*ai.Extraction, error) {
	m.callCount++

	if m.ExtractAtomsFunc != nil {
		return m.ExtractAtomsFunc(ctx, text, capsuleID)
	}

	extraction := &ai.Extraction{}
	for _, sentence := range splitSentences(text) {
		extraction.Atoms = append(extraction.Atoms, ai.CandidateAtom{
			Statement:  sentence,
			Kind:       guessKind(sentence),
			Confidence: 80,
		})
	}
	return extraction, nil
}

// CallCount returns the number of times ExtractAtoms was called.
func (m *MockExtractor) CallCount() int {
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *MockExtractor) Reset() {
	m.callCount = 0
	m.ExtractAtomsFunc = nil
}

func splitSentences(text string) []string {
	var sentences []string
	for _, part := range strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?' || r == '\n'
	}) {
		part = strings.TrimSpace(part)
		if part != "" {
			sentences = append(sentences, part)
		}
	}
	return sentences
}

func guessKind(sentence string) string {
	lower := strings.ToLower(sentence)
	switch {
	case strings.Contains(lower, "decided") || strings.Contains(lower, "will use") || strings.Contains(lower, "chose"):
		return "decision"
	case strings.Contains(lower, "risk") || strings.Contains(lower, "might") || strings.Contains(lower, "could fail"):
		return "risk"
	case strings.Contains(lower, "assume") || strings.Contains(lower, "assuming"):
		return "assumption"
	case strings.Contains(lower, "must") || strings.Contains(lower, "required"):
		return "requirement"
	default:
		return "fact"
	}
}
