package http

import (
	"fmt"
	"net/http"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/counsellor/pkg/domain/interfaces"
	"github.com/secmon-lab/counsellor/pkg/domain/model/auth"
	"github.com/secmon-lab/counsellor/pkg/utils/logging"
	"github.com/secmon-lab/counsellor/pkg/utils/user"
)

// getDetailedStackTrace returns a detailed stack trace with function names and line numbers
func getDetailedStackTrace() string {
	var buf strings.Builder
	buf.WriteString("Detailed Stack Trace:\n")

	// Get callers (skip the first few frames that are in the panic recovery code)
	callers := make([]uintptr, 64)
	n := runtime.Callers(3, callers)
	frames := runtime.CallersFrames(callers[:n])

	for {
		frame, more := frames.Next()
		buf.WriteString(fmt.Sprintf("  %s\n    %s:%d\n", frame.Function, frame.File, frame.Line))
		if !more {
			break
		}
	}

	return buf.String()
}

func panicRecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				if err == http.ErrAbortHandler {
					panic(err)
				}

				panicErr := goerr.New("panic recovered",
					goerr.V("panic", fmt.Sprintf("%v", err)),
					goerr.V("debug_stack", string(debug.Stack())),
					goerr.V("detailed_stack", getDetailedStackTrace()),
					goerr.V("method", r.Method),
					goerr.V("path", r.URL.Path),
				)

				handleError(w, r, panicErr)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// tokenFromRequest takes the session token from the auth cookie, or from a
// bearer Authorization header if there is no cookie.
func tokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(auth.CookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

func authMiddleware(verifier *auth.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			logger := logging.From(ctx)

			token := tokenFromRequest(r)
			if token == "" {
				writeError(w, r, http.StatusUnauthorized, "no token found")
				return
			}

			if verifier == nil {
				logger.Error("token verifier is not configured")
				writeError(w, r, http.StatusUnauthorized, "unauthorized")
				return
			}

			claims, err := verifier.Verify(ctx, token)
			if err != nil {
				logger.Warn("invalid token", "error", err)
				writeError(w, r, http.StatusUnauthorized, "unauthorized")
				return
			}

			ctx = auth.ContextWithClaims(ctx, claims)
			ctx = user.WithUserID(ctx, claims.UserID)
			ctx = logging.With(ctx, logger.With("user_id", claims.UserID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// onboardingMiddleware lets only users who finished onboarding through
func onboardingMiddleware(uc interfaces.ProfileUsecases) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			userID := user.FromContext(ctx)
			if userID == "" {
				writeError(w, r, http.StatusUnauthorized, "Unauthorized")
				return
			}

			u, err := uc.GetUser(ctx, userID)
			if err != nil {
				handleError(w, r, err)
				return
			}
			if u == nil {
				writeError(w, r, http.StatusNotFound, "User not found")
				return
			}
			if !u.OnboardingComplete {
				writeJSON(w, r, http.StatusForbidden, errorResponse{
					Message:    "Please complete onboarding first",
					RedirectTo: "/onboarding",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
