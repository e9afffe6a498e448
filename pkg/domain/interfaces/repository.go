package interfaces

import (
	"context"

	"github.com/secmon-lab/counsellor/pkg/domain/model/chat"
	"github.com/secmon-lab/counsellor/pkg/domain/model/profile"
	"github.com/secmon-lab/counsellor/pkg/domain/types"
)

// ChatRepository stores chat histories. UpdateChatHistory must be safe to call
// repeatedly with a non-decreasing response.
type ChatRepository interface {
	PutChatHistory(ctx context.Context, history *chat.History) error
	UpdateChatHistory(ctx context.Context, id types.ChatID, response string, status types.ChatStatus) error
	GetChatHistory(ctx context.Context, id types.ChatID) (*chat.History, error)
	ListChatHistories(ctx context.Context, ownerID types.UserID) (chat.Histories, error)
}

type UserRepository interface {
	GetUser(ctx context.Context, id types.UserID) (*profile.User, error)
	PutUser(ctx context.Context, user *profile.User) error
	PutRecommendations(ctx context.Context, id types.UserID, recs *profile.Recommendations) error
}

type Repository interface {
	ChatRepository
	UserRepository
}
