package usecase

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/counsellor/pkg/domain/interfaces"
	"github.com/secmon-lab/counsellor/pkg/domain/model/chat"
	"github.com/secmon-lab/counsellor/pkg/domain/model/errs"
	"github.com/secmon-lab/counsellor/pkg/domain/model/profile"
	"github.com/secmon-lab/counsellor/pkg/domain/types"
	"github.com/secmon-lab/counsellor/pkg/service/relay"
	"github.com/secmon-lab/counsellor/pkg/utils/errutil"
	"github.com/secmon-lab/counsellor/pkg/utils/logging"
)

// Chat answers message with the counsellor prompt and the user's profile and
// streams the answer to tr.
func (x *UseCases) Chat(ctx context.Context, userID types.UserID, message string, tr interfaces.StreamTransport) (*chat.History, error) {
	if x.relay == nil {
		return nil, goerr.Wrap(errs.ErrLLMNotConfigured, "chat is not available", goerr.T(errs.TagInternal))
	}
	if strings.TrimSpace(message) == "" {
		return nil, goerr.New("message is required", goerr.TV(errutil.UserIDKey, userID), goerr.T(errs.TagValidation))
	}

	var onboarding *profile.Onboarding
	user, err := x.repository.GetUser(ctx, userID)
	if err != nil {
		// the profile only improves the answer
		logging.From(ctx).Warn("failed to get user profile, answer without it",
			logging.ErrAttr(err),
			"user_id", userID)
	} else if user != nil {
		onboarding = user.Onboarding
	}

	prompt, err := x.prompt.ChatPrompt(ctx, onboarding, message)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build chat prompt", goerr.TV(errutil.UserIDKey, userID), goerr.T(errs.TagInternal))
	}

	return x.relay.Run(ctx, relay.Exchange{
		OwnerID: userID,
		Message: message,
		Prompt:  prompt,
	}, tr)
}
