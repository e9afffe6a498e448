package http

var (
	PanicRecoveryMiddleware = panicRecoveryMiddleware
	LoggingMiddleware       = loggingMiddleware
	TokenFromRequest        = tokenFromRequest
	HandleError             = handleError
)
