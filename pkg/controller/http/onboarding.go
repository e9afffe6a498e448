package http

import (
	"encoding/json"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/counsellor/pkg/domain/interfaces"
	"github.com/secmon-lab/counsellor/pkg/domain/model/auth"
	"github.com/secmon-lab/counsellor/pkg/domain/model/errs"
	"github.com/secmon-lab/counsellor/pkg/domain/model/profile"
	"github.com/secmon-lab/counsellor/pkg/utils/user"
)

type onboardingResponse struct {
	Success    bool                `json:"success"`
	Onboarding *profile.Onboarding `json:"onboarding"`
}

type onboardingUserResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	User    *profile.User `json:"user"`
}

func getOnboardingHandler(uc interfaces.OnboardingUsecases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := user.FromContext(ctx)
		if userID == "" {
			writeError(w, r, http.StatusUnauthorized, "Unauthorized")
			return
		}

		ob, err := uc.GetOnboarding(ctx, userID)
		if err != nil {
			handleError(w, r, err)
			return
		}

		writeJSON(w, r, http.StatusOK, onboardingResponse{Success: true, Onboarding: ob})
	}
}

func completeOnboardingHandler(uc interfaces.OnboardingUsecases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		claims, err := auth.ClaimsFromContext(ctx)
		if err != nil {
			writeError(w, r, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var req profile.Onboarding
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			handleError(w, r, goerr.Wrap(err, "failed to decode onboarding", goerr.T(errs.TagInvalidRequest)))
			return
		}
		// recommendations are generated, never submitted
		req.Recommendations = nil

		u, err := uc.CompleteOnboarding(ctx, claims.UserID, claims.Email, &req)
		if err != nil {
			handleError(w, r, err)
			return
		}

		writeJSON(w, r, http.StatusOK, onboardingUserResponse{
			Success: true,
			Message: "Onboarding completed successfully",
			User:    u,
		})
	}
}

// updateOnboardingHandler merges the submitted fields into the saved answers
func updateOnboardingHandler(uc interfaces.OnboardingUsecases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := user.FromContext(ctx)
		if userID == "" {
			writeError(w, r, http.StatusUnauthorized, "Unauthorized")
			return
		}

		current, err := uc.GetOnboarding(ctx, userID)
		if err != nil {
			handleError(w, r, err)
			return
		}

		merged := *current
		if err := json.NewDecoder(r.Body).Decode(&merged); err != nil {
			handleError(w, r, goerr.Wrap(err, "failed to decode onboarding", goerr.T(errs.TagInvalidRequest)))
			return
		}

		u, err := uc.UpdateOnboarding(ctx, userID, &merged)
		if err != nil {
			handleError(w, r, err)
			return
		}

		writeJSON(w, r, http.StatusOK, onboardingUserResponse{
			Success: true,
			Message: "Onboarding updated successfully",
			User:    u,
		})
	}
}
