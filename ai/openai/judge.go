package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/poiesic/stratum/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// ConflictJudge implements ai.ConflictJudge using OpenAI-compatible chat APIs.
type ConflictJudge struct {
	client llms.Model
	logger *slog.Logger
}

type wireVerdict struct {
	Action    string `json:"action"`
	Reasoning string `json:"reasoning"`
}

// newConflictJudge is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newConflictJudge(config *ai.Config) (*ConflictJudge, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.ExtractorHost),
		openai.WithToken("none"),
		openai.WithModel(config.ExtractorModel),
	)
	if err != nil {
		return nil, err
	}

	return &ConflictJudge{
		client: client,
		logger: slog.Default().With("component", "openai-judge"),
	}, nil
}

// NewConflictJudge creates a new conflict judge using the provided
// configuration.
//
// Returns ai.ConflictJudge interface to enforce abstraction.
func NewConflictJudge(config *ai.Config) (ai.ConflictJudge, error) {
	return newConflictJudge(config)
}

// Judge compares a candidate statement against a canonical one using an LLM.
func (j *ConflictJudge) Judge(ctx context.Context, statement, canonicalStatement string) (ai.Verdict, error) {
	userPrompt := fmt.Sprintf("Candidate: %q\nEstablished: %q", statement, canonicalStatement)
	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(buildJudgePrompt()),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(userPrompt),
			},
		},
	}

	var result wireVerdict
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		response, err := j.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			j.logger.Error("failed to generate verdict", "attempt", attempt+1, "err", err)
			return ai.Verdict{}, err
		}

		if len(response.Choices) < 1 {
			return ai.Verdict{Action: ai.VerdictNone}, nil
		}

		responseText := stripCodeFences(response.Choices[0].Content)
		responseText = repairJSON(responseText)

		if err := json.Unmarshal([]byte(responseText), &result); err != nil {
			lastErr = err
			j.logger.Warn("error parsing verdict response",
				"attempt", attempt+1,
				"response", responseText,
				"err", err)
			continue
		}

		lastErr = nil
		break
	}

	if lastErr != nil {
		j.logger.Error("failed to parse verdict after retries", "err", lastErr)
		return ai.Verdict{}, lastErr
	}

	switch result.Action {
	case ai.VerdictDuplicate, ai.VerdictConflict:
		return ai.Verdict{Action: result.Action, Reasoning: result.Reasoning}, nil
	default:
		return ai.Verdict{Action: ai.VerdictNone, Reasoning: result.Reasoning}, nil
	}
}
