package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/counsellor/pkg/domain/model/chat"
	"github.com/secmon-lab/counsellor/pkg/domain/model/errs"
	"github.com/secmon-lab/counsellor/pkg/domain/types"
	"github.com/secmon-lab/counsellor/pkg/utils/errutil"
)

// GetChatHistories returns the user's exchanges, oldest first
func (x *UseCases) GetChatHistories(ctx context.Context, userID types.UserID) (chat.Histories, error) {
	histories, err := x.repository.ListChatHistories(ctx, userID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list chat histories", goerr.TV(errutil.UserIDKey, userID))
	}
	if histories == nil {
		histories = chat.Histories{}
	}
	return histories, nil
}

// SaveConversation stores an exchange that the client already has in full
func (x *UseCases) SaveConversation(ctx context.Context, userID types.UserID, message, response string) (*chat.History, error) {
	if message == "" {
		return nil, goerr.New("message is required", goerr.TV(errutil.UserIDKey, userID), goerr.T(errs.TagValidation))
	}

	history := chat.NewCompletedHistory(ctx, userID, message, response)
	if err := x.repository.PutChatHistory(ctx, history); err != nil {
		return nil, goerr.Wrap(err, "failed to save conversation", goerr.TV(errutil.UserIDKey, userID))
	}

	return history, nil
}
