package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/counsellor/pkg/domain/model/errs"
	"github.com/secmon-lab/counsellor/pkg/domain/model/profile"
	"github.com/secmon-lab/counsellor/pkg/domain/types"
	"github.com/secmon-lab/counsellor/pkg/utils/clock"
	"github.com/secmon-lab/counsellor/pkg/utils/errutil"
	"github.com/secmon-lab/counsellor/pkg/utils/logging"
)

// GetOnboarding returns the onboarding answers of the user.
func (x *UseCases) GetOnboarding(ctx context.Context, userID types.UserID) (*profile.Onboarding, error) {
	user, err := x.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil || user.Onboarding == nil {
		return nil, goerr.Wrap(errs.ErrOnboardingNotFound, "no onboarding record",
			goerr.TV(errutil.UserIDKey, userID),
			goerr.T(errs.TagNotFound))
	}
	return user.Onboarding, nil
}

// CompleteOnboarding saves the onboarding answers and marks the user as
// onboarded. The user record is created on first completion.
func (x *UseCases) CompleteOnboarding(ctx context.Context, userID types.UserID, email string, ob *profile.Onboarding) (*profile.User, error) {
	if err := ob.Validate(); err != nil {
		return nil, goerr.Wrap(err, "failed to complete onboarding", goerr.TV(errutil.UserIDKey, userID))
	}

	user, err := x.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		user = &profile.User{
			ID:        userID,
			Email:     email,
			CreatedAt: clock.Now(ctx),
		}
	}

	saved := *ob
	saved.ApplyDefaults()
	// answers changed, recommendations are generated again on demand
	saved.Recommendations = nil

	user.Onboarding = &saved
	user.OnboardingComplete = true
	if err := x.repository.PutUser(ctx, user); err != nil {
		return nil, goerr.Wrap(err, "failed to save onboarding", goerr.TV(errutil.UserIDKey, userID))
	}

	logging.From(ctx).Info("onboarding completed", "user_id", userID)
	return user, nil
}

// UpdateOnboarding replaces the onboarding answers of a user who already has
// them. Partial updates are merged by the caller.
func (x *UseCases) UpdateOnboarding(ctx context.Context, userID types.UserID, ob *profile.Onboarding) (*profile.User, error) {
	user, err := x.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil || user.Onboarding == nil {
		return nil, goerr.Wrap(errs.ErrOnboardingNotFound, "no onboarding record",
			goerr.TV(errutil.UserIDKey, userID),
			goerr.T(errs.TagNotFound))
	}

	if err := ob.Validate(); err != nil {
		return nil, goerr.Wrap(err, "failed to update onboarding", goerr.TV(errutil.UserIDKey, userID))
	}

	saved := *ob
	saved.Recommendations = nil
	user.Onboarding = &saved
	if err := x.repository.PutUser(ctx, user); err != nil {
		return nil, goerr.Wrap(err, "failed to save onboarding", goerr.TV(errutil.UserIDKey, userID))
	}

	return user, nil
}
