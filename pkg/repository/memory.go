package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/counsellor/pkg/domain/interfaces"
	"github.com/secmon-lab/counsellor/pkg/domain/model/chat"
	"github.com/secmon-lab/counsellor/pkg/domain/model/errs"
	"github.com/secmon-lab/counsellor/pkg/domain/model/profile"
	"github.com/secmon-lab/counsellor/pkg/domain/types"
	"github.com/secmon-lab/counsellor/pkg/utils/errutil"
)

type Memory struct {
	mu     sync.RWMutex
	userMu sync.RWMutex

	histories map[types.ChatID]*chat.History
	users     map[types.UserID]*profile.User

	// Call counter for tracking method invocations
	callCounts map[string]int
	callMu     sync.RWMutex

	eb *goerr.Builder
}

var _ interfaces.Repository = &Memory{}

func NewMemory() *Memory {
	return &Memory{
		histories:  make(map[types.ChatID]*chat.History),
		users:      make(map[types.UserID]*profile.User),
		callCounts: make(map[string]int),
		eb:         goerr.NewBuilder(goerr.TV(errutil.RepositoryKey, "memory")),
	}
}

// incrementCallCount safely increments the call counter for a method
func (r *Memory) incrementCallCount(methodName string) {
	r.callMu.Lock()
	defer r.callMu.Unlock()
	r.callCounts[methodName]++
}

// GetCallCount returns the number of times a method has been called
func (r *Memory) GetCallCount(methodName string) int {
	r.callMu.RLock()
	defer r.callMu.RUnlock()
	return r.callCounts[methodName]
}

func (r *Memory) PutChatHistory(ctx context.Context, history *chat.History) error {
	r.incrementCallCount("PutChatHistory")

	if err := history.Validate(); err != nil {
		return r.eb.Wrap(err, "invalid chat history")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *history
	r.histories[history.ID] = &copied
	return nil
}

func (r *Memory) UpdateChatHistory(ctx context.Context, id types.ChatID, response string, status types.ChatStatus) error {
	r.incrementCallCount("UpdateChatHistory")

	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.histories[id]
	if !ok {
		return r.eb.New("chat history not found",
			goerr.TV(errutil.ChatIDKey, id),
			goerr.T(errs.TagNotFound))
	}

	// Apply on a copy so that a rejected update leaves the stored record untouched
	updated := *current
	if _, err := updated.Apply(ctx, response, status); err != nil {
		return r.eb.Wrap(err, "failed to update chat history")
	}
	r.histories[id] = &updated

	return nil
}

func (r *Memory) GetChatHistory(ctx context.Context, id types.ChatID) (*chat.History, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.histories[id]
	if !ok {
		return nil, nil
	}

	copied := *h
	return &copied, nil
}

func (r *Memory) ListChatHistories(ctx context.Context, ownerID types.UserID) (chat.Histories, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var histories chat.Histories
	for _, h := range r.histories {
		if h.OwnerID == ownerID {
			copied := *h
			histories = append(histories, &copied)
		}
	}

	sort.SliceStable(histories, func(i, j int) bool {
		if histories[i].CreatedAt.Equal(histories[j].CreatedAt) {
			return histories[i].ID < histories[j].ID
		}
		return histories[i].CreatedAt.Before(histories[j].CreatedAt)
	})

	return histories, nil
}

func (r *Memory) GetUser(ctx context.Context, id types.UserID) (*profile.User, error) {
	r.userMu.RLock()
	defer r.userMu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}

	return copyUser(u), nil
}

func (r *Memory) PutUser(ctx context.Context, user *profile.User) error {
	if user.ID == "" {
		return r.eb.New("user id is required", goerr.T(errs.TagValidation))
	}

	r.userMu.Lock()
	defer r.userMu.Unlock()

	r.users[user.ID] = copyUser(user)
	return nil
}

func (r *Memory) PutRecommendations(ctx context.Context, id types.UserID, recs *profile.Recommendations) error {
	r.userMu.Lock()
	defer r.userMu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return r.eb.New("user not found", goerr.TV(errutil.UserIDKey, id), goerr.T(errs.TagNotFound))
	}
	if u.Onboarding == nil {
		return r.eb.New("user has no onboarding profile",
			goerr.TV(errutil.UserIDKey, id),
			goerr.T(errs.TagInvalidState))
	}

	copied := *recs
	u.Onboarding.Recommendations = &copied
	return nil
}

func copyUser(u *profile.User) *profile.User {
	copied := *u
	if u.Onboarding != nil {
		ob := *u.Onboarding
		ob.PreferredCountries = append([]string(nil), u.Onboarding.PreferredCountries...)
		if u.Onboarding.Recommendations != nil {
			recs := *u.Onboarding.Recommendations
			ob.Recommendations = &recs
		}
		copied.Onboarding = &ob
	}
	return &copied
}
