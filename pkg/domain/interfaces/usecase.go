package interfaces

import (
	"context"

	"github.com/secmon-lab/counsellor/pkg/domain/model/chat"
	"github.com/secmon-lab/counsellor/pkg/domain/model/profile"
	"github.com/secmon-lab/counsellor/pkg/domain/types"
)

type ChatUsecases interface {
	// Chat relays the answer for message to tr. An error is returned only if
	// nothing has been written to tr.
	Chat(ctx context.Context, userID types.UserID, message string, tr StreamTransport) (*chat.History, error)
	GetChatHistories(ctx context.Context, userID types.UserID) (chat.Histories, error)
	SaveConversation(ctx context.Context, userID types.UserID, message, response string) (*chat.History, error)
}

type ProfileUsecases interface {
	GetUser(ctx context.Context, userID types.UserID) (*profile.User, error)
	GetUniversityRecommendations(ctx context.Context, userID types.UserID) (*profile.Recommendations, error)
}

type OnboardingUsecases interface {
	GetOnboarding(ctx context.Context, userID types.UserID) (*profile.Onboarding, error)
	CompleteOnboarding(ctx context.Context, userID types.UserID, email string, ob *profile.Onboarding) (*profile.User, error)
	UpdateOnboarding(ctx context.Context, userID types.UserID, ob *profile.Onboarding) (*profile.User, error)
}
