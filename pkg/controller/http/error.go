package http

import (
	"errors"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/counsellor/pkg/domain/model/errs"
	"github.com/secmon-lab/counsellor/pkg/service/relay"
	"github.com/secmon-lab/counsellor/pkg/utils/logging"
)

// handleError writes a JSON error response. Error details are logged but never
// sent to the client.
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	logger := logging.From(r.Context())

	switch {
	case goerr.HasTag(err, errs.TagNotFound):
		logger.Warn("Not Found", "error", err)
		msg := "Not found"
		if errors.Is(err, errs.ErrOnboardingNotFound) {
			msg = "Onboarding record not found"
		}
		writeError(w, r, http.StatusNotFound, msg)

	case goerr.HasTag(err, errs.TagValidation), goerr.HasTag(err, errs.TagInvalidRequest):
		logger.Warn("Bad Request", "error", err)
		msg := "Invalid request"
		switch {
		case errors.Is(err, errs.ErrOnboardingIncomplete):
			msg = "Please complete onboarding first"
		case errors.Is(err, errs.ErrOnboardingFieldsMissing):
			msg = "All mandatory fields must be filled"
		}
		writeError(w, r, http.StatusBadRequest, msg)

	case goerr.HasTag(err, errs.TagUnauthorized):
		logger.Warn("Unauthorized", "error", err)
		writeError(w, r, http.StatusUnauthorized, "Unauthorized")

	case goerr.HasTag(err, errs.TagForbidden):
		logger.Warn("Forbidden", "error", err)
		writeError(w, r, http.StatusForbidden, "Forbidden")

	case goerr.HasTag(err, errs.TagRateLimit):
		logger.Warn("Rate Limit Exceeded", "error", err)
		writeError(w, r, http.StatusTooManyRequests, relay.MessageRateLimited)

	case goerr.HasTag(err, errs.TagExternal), goerr.HasTag(err, errs.TagUpstreamStream):
		logger.Error("External Service Error", "error", err)
		writeError(w, r, http.StatusBadGateway, relay.MessageUnavailable)

	case goerr.HasTag(err, errs.TagTimeout):
		logger.Error("Gateway Timeout", "error", err)
		writeError(w, r, http.StatusGatewayTimeout, "Gateway timeout")

	case goerr.HasTag(err, errs.TagTransportClosed):
		// nobody is listening any more
		logger.Info("client closed connection", "error", err)

	default:
		errs.Handle(r.Context(), err)
		writeError(w, r, http.StatusInternalServerError, "Internal server error")
	}
}
