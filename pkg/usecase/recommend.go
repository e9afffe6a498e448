package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/counsellor/pkg/domain/model/errs"
	"github.com/secmon-lab/counsellor/pkg/domain/model/profile"
	"github.com/secmon-lab/counsellor/pkg/domain/types"
	"github.com/secmon-lab/counsellor/pkg/service/llm"
	"github.com/secmon-lab/counsellor/pkg/utils/errutil"
	"github.com/secmon-lab/counsellor/pkg/utils/logging"
)

func (x *UseCases) GetUser(ctx context.Context, userID types.UserID) (*profile.User, error) {
	user, err := x.repository.GetUser(ctx, userID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get user", goerr.TV(errutil.UserIDKey, userID))
	}
	return user, nil
}

// GetUniversityRecommendations returns the saved recommendations of the user
// or asks the LLM once and saves the answer.
func (x *UseCases) GetUniversityRecommendations(ctx context.Context, userID types.UserID) (*profile.Recommendations, error) {
	logger := logging.From(ctx)

	user, err := x.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, goerr.New("user not found", goerr.TV(errutil.UserIDKey, userID), goerr.T(errs.TagNotFound))
	}
	if user.Onboarding == nil {
		return nil, goerr.Wrap(errs.ErrOnboardingIncomplete, "no onboarding profile",
			goerr.TV(errutil.UserIDKey, userID),
			goerr.T(errs.TagValidation))
	}

	if !user.Onboarding.Recommendations.IsEmpty() {
		return user.Onboarding.Recommendations, nil
	}

	if x.llmClient == nil {
		return nil, goerr.Wrap(errs.ErrLLMNotConfigured, "recommendation is not available", goerr.T(errs.TagInternal))
	}

	prompt, err := x.prompt.RecommendationPrompt(ctx, user.Onboarding)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build recommendation prompt", goerr.T(errs.TagInternal))
	}

	logger.Info("generating university recommendations", "user_id", userID)
	recs, err := llm.Ask(ctx, x.llmClient, prompt,
		llm.WithValidate(func(v profile.Recommendations) error {
			return v.Validate()
		}),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate recommendations",
			goerr.TV(errutil.UserIDKey, userID),
			goerr.T(errs.TagExternal))
	}

	if err := x.repository.PutRecommendations(ctx, userID, recs); err != nil {
		// the answer is still useful, it will be generated again next time
		logger.Warn("failed to save recommendations", logging.ErrAttr(err), "user_id", userID)
	}

	return recs, nil
}
