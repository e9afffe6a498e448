package request_id

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// Header carries the request ID both ways. A value set by a proxy in front of
// the server is kept so that its logs and ours can be joined.
const Header = "X-Request-ID"

const maxLength = 128

type contextKey string

const (
	requestIDKey contextKey = "request_id"
)

func With(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func FromContext(ctx context.Context) string {
	if requestID, ok := ctx.Value(requestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// Generate sets a new random request ID to the context.
func Generate(ctx context.Context) (context.Context, string) {
	requestID := uuid.New().String()
	return With(ctx, requestID), requestID
}

// FromRequest takes the ID from the request header if it is usable, or
// generates a new one.
func FromRequest(r *http.Request) (context.Context, string) {
	if id := r.Header.Get(Header); valid(id) {
		return With(r.Context(), id), id
	}
	return Generate(r.Context())
}

func valid(id string) bool {
	if id == "" || len(id) > maxLength {
		return false
	}
	for _, c := range id {
		if c < 0x21 || c > 0x7e {
			return false
		}
	}
	return true
}
