package mock

import (
	"context"
	"strings"

	"github.com/poiesic/stratum/ai"
)

// MockJudge is a test double for ai.ConflictJudge.
// It allows custom behavior injection via function fields.
type MockJudge struct {
	// JudgeFunc is called by Judge if set.
	// If nil, uses default negation-based heuristics.
	JudgeFunc func(ctx context.Context, statement, canonicalStatement string) (ai.Verdict, error)

	callCount int
}

// NewMockJudge creates a mock conflict judge with default behavior.
func NewMockJudge() *MockJudge {
	return &MockJudge{}
}

// Judge compares two statements with simple heuristics: identical statements
// are duplicates, and a pair where exactly one side carries a negation is a
// conflict. Everything else passes.
func (m *MockJudge) Judge(ctx context.Context, statement, canonicalStatement string) (ai.Verdict, error) {
	m.callCount++

	if m.JudgeFunc != nil {
		return m.JudgeFunc(ctx, statement, canonicalStatement)
	}

	a := strings.ToLower(strings.TrimSpace(statement))
	b := strings.ToLower(strings.TrimSpace(canonicalStatement))

	if a == b {
		return ai.Verdict{Action: ai.VerdictDuplicate, Reasoning: "statements are identical"}, nil
	}
	if hasNegation(a) != hasNegation(b) {
		return ai.Verdict{Action: ai.VerdictConflict, Reasoning: "statements disagree on negation"}, nil
	}
	return ai.Verdict{Action: ai.VerdictNone}, nil
}

// CallCount returns the number of times Judge was called.
func (m *MockJudge) CallCount() int {
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *MockJudge) Reset() {
	m.callCount = 0
	m.JudgeFunc = nil
}

func hasNegation(s string) bool {
	for _, marker := range []string{" not ", " no ", " never ", "n't "} {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}
