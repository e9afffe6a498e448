package chat

import (
	"context"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/counsellor/pkg/domain/model/errs"
	"github.com/secmon-lab/counsellor/pkg/domain/types"
	"github.com/secmon-lab/counsellor/pkg/utils/clock"
	"github.com/secmon-lab/counsellor/pkg/utils/errutil"
)

// History is the durable record of one question/answer exchange with the counsellor.
type History struct {
	ID        types.ChatID     `firestore:"id" json:"id"`
	OwnerID   types.UserID     `firestore:"owner_id" json:"userId"`
	Message   string           `firestore:"message" json:"message"`
	Response  string           `firestore:"response" json:"response"`
	Status    types.ChatStatus `firestore:"status" json:"status"`
	CreatedAt time.Time        `firestore:"created_at" json:"createdAt"`
	UpdatedAt time.Time        `firestore:"updated_at" json:"updatedAt"`
}

// NewHistory creates a pending history with an empty response
func NewHistory(ctx context.Context, ownerID types.UserID, message string) *History {
	now := clock.Now(ctx)
	return &History{
		ID:        types.NewChatID(),
		OwnerID:   ownerID,
		Message:   message,
		Status:    types.ChatStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewCompletedHistory creates a history that is already finished, e.g. a
// conversation saved by the client.
func NewCompletedHistory(ctx context.Context, ownerID types.UserID, message, response string) *History {
	h := NewHistory(ctx, ownerID, message)
	h.Response = response
	h.Status = types.ChatStatusCompleted
	return h
}

// Apply moves the history to the given response and status. The response
// must extend the current one and the status must be reachable from the
// current status. Re-applying an identical terminal state is a no-op and
// reports changed=false.
func (x *History) Apply(ctx context.Context, response string, status types.ChatStatus) (bool, error) {
	if x.Status.IsTerminal() {
		if x.Status == status && x.Response == response {
			return false, nil
		}
		return false, goerr.New("chat history is already finished",
			goerr.TV(errutil.ChatIDKey, x.ID),
			goerr.TV(errutil.StatusKey, x.Status),
			goerr.TV(errutil.NextStatusKey, status),
			goerr.T(errs.TagInvalidState))
	}

	if !x.Status.CanTransitTo(status) {
		return false, goerr.New("invalid chat status transition",
			goerr.TV(errutil.ChatIDKey, x.ID),
			goerr.TV(errutil.StatusKey, x.Status),
			goerr.TV(errutil.NextStatusKey, status),
			goerr.T(errs.TagInvalidState))
	}

	if !strings.HasPrefix(response, x.Response) {
		return false, goerr.New("chat response must not shrink",
			goerr.TV(errutil.ChatIDKey, x.ID),
			goerr.TV(errutil.LengthKey, len(response)),
			goerr.V("current_length", len(x.Response)),
			goerr.T(errs.TagInvalidState))
	}

	if x.Status == status && x.Response == response {
		return false, nil
	}

	x.Response = response
	x.Status = status
	x.UpdatedAt = clock.Now(ctx)
	return true, nil
}

// Validate checks fields required to persist the history
func (x *History) Validate() error {
	if x.ID == "" {
		return goerr.New("chat id is required", goerr.T(errs.TagValidation))
	}
	if x.OwnerID == "" {
		return goerr.New("owner id is required", goerr.TV(errutil.ChatIDKey, x.ID), goerr.T(errs.TagValidation))
	}
	if x.Message == "" {
		return goerr.New("message is required", goerr.TV(errutil.ChatIDKey, x.ID), goerr.T(errs.TagValidation))
	}
	if !x.Status.Valid() {
		return goerr.New("invalid chat status", goerr.TV(errutil.StatusKey, x.Status), goerr.T(errs.TagValidation))
	}
	return nil
}

// Histories is a list of chat histories
type Histories []*History
