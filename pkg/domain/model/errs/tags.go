package errs

import "github.com/m-mizutani/goerr/v2"

var (
	// Client errors (4xx)
	TagNotFound     = goerr.NewTag("not_found")    // 404
	TagValidation   = goerr.NewTag("validation")   // 400
	TagUnauthorized = goerr.NewTag("unauthorized") // 401
	TagForbidden    = goerr.NewTag("forbidden")    // 403
	TagRateLimit    = goerr.NewTag("rate_limit")   // 429

	// Server errors (5xx)
	TagInternal = goerr.NewTag("internal") // 500
	TagExternal = goerr.NewTag("external") // 502/503
	TagTimeout  = goerr.NewTag("timeout")  // 504
	TagDatabase = goerr.NewTag("database") // 500 (specific to DB errors)

	// Business logic errors
	TagInvalidState = goerr.NewTag("invalid_state")

	// Streaming relay errors
	TagUpstreamStream  = goerr.NewTag("upstream_stream")  // upstream failed after output was delivered
	TagTransportClosed = goerr.NewTag("transport_closed") // client went away

	TagInvalidLLMResponse = goerr.NewTag("invalid_llm_response")
	TagInvalidRequest     = goerr.NewTag("invalid_request")
)
