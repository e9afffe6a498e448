package user

import (
	"context"

	"github.com/secmon-lab/counsellor/pkg/domain/types"
)

type contextKey string

const (
	userIDKey contextKey = "user_id"
)

// WithUserID sets user ID in context
func WithUserID(ctx context.Context, userID types.UserID) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// FromContext extracts user ID from context
func FromContext(ctx context.Context) types.UserID {
	if userID, ok := ctx.Value(userIDKey).(types.UserID); ok {
		return userID
	}
	return ""
}
