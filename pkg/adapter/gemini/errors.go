package gemini

import (
	"errors"
	"net/http"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/counsellor/pkg/domain/model/errs"
	"github.com/secmon-lab/counsellor/pkg/utils/errutil"
	"google.golang.org/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const statusResourceExhausted = "RESOURCE_EXHAUSTED"

func translateError(err error, model string) error {
	opts := []goerr.Option{
		goerr.TV(errutil.ServiceKey, "gemini"),
		goerr.TV(errutil.ModelKey, model),
	}
	if code := httpStatus(err); code != 0 {
		opts = append(opts, goerr.TV(errutil.HTTPStatusKey, code))
	}

	if isRateLimited(err) {
		return goerr.Wrap(err, "gemini rate limit exceeded", append(opts, goerr.T(errs.TagRateLimit))...)
	}
	return goerr.Wrap(err, "gemini stream failed", append(opts, goerr.T(errs.TagExternal))...)
}

func isRateLimited(err error) bool {
	if apiErr, ok := asAPIError(err); ok {
		if apiErr.Code == http.StatusTooManyRequests || apiErr.Status == statusResourceExhausted {
			return true
		}
	}

	if status.Code(err) == codes.ResourceExhausted {
		return true
	}

	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, statusResourceExhausted)
}

func httpStatus(err error) int {
	if apiErr, ok := asAPIError(err); ok {
		return apiErr.Code
	}
	return 0
}

func asAPIError(err error) (genai.APIError, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}

	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return *apiErrPtr, true
	}

	return genai.APIError{}, false
}
