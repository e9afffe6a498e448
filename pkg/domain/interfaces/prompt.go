package interfaces

import (
	"context"

	"github.com/secmon-lab/counsellor/pkg/domain/model/profile"
)

// PromptService builds prompts sent to LLMs
type PromptService interface {
	// ChatPrompt builds the prompt for a streamed chat answer. onboarding may be nil.
	ChatPrompt(ctx context.Context, onboarding *profile.Onboarding, message string) (string, error)

	// RecommendationPrompt builds the JSON prompt for university recommendations
	RecommendationPrompt(ctx context.Context, onboarding *profile.Onboarding) (string, error)
}
