package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/counsellor/pkg/domain/interfaces"
	"github.com/secmon-lab/counsellor/pkg/domain/model/chat"
	"github.com/secmon-lab/counsellor/pkg/domain/model/errs"
	"github.com/secmon-lab/counsellor/pkg/domain/model/profile"
	"github.com/secmon-lab/counsellor/pkg/domain/types"
	"github.com/secmon-lab/counsellor/pkg/utils/errutil"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type Firestore struct {
	db *firestore.Client
	eb *goerr.Builder
}

var _ interfaces.Repository = &Firestore{}

func NewFirestore(ctx context.Context, projectID, databaseID string) (*Firestore, error) {
	db, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client")
	}

	return &Firestore{
		db: db,
		eb: goerr.NewBuilder(
			goerr.TV(errutil.RepositoryKey, "firestore"),
			goerr.V("project_id", projectID),
			goerr.V("database_id", databaseID),
		),
	}, nil
}

func (r *Firestore) Close() error {
	return r.db.Close()
}

const (
	CollectionChatHistories = "chat_histories"
	CollectionUsers         = "users"
)

func (r *Firestore) PutChatHistory(ctx context.Context, history *chat.History) error {
	if err := history.Validate(); err != nil {
		return r.eb.Wrap(err, "invalid chat history")
	}

	_, err := r.db.Collection(CollectionChatHistories).Doc(history.ID.String()).Set(ctx, history)
	if err != nil {
		return r.eb.Wrap(err, "failed to put chat history",
			goerr.TV(errutil.ChatIDKey, history.ID),
			goerr.T(errs.TagDatabase))
	}
	return nil
}

// UpdateChatHistory reads the current record and applies the change in a
// transaction, so that a stale or shrinking write can never overwrite a newer
// response and terminal records stay untouched.
func (r *Firestore) UpdateChatHistory(ctx context.Context, id types.ChatID, response string, status types.ChatStatus) error {
	docRef := r.db.Collection(CollectionChatHistories).Doc(id.String())

	err := r.db.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			if isNotFound(err) {
				return goerr.New("chat history not found",
					goerr.TV(errutil.ChatIDKey, id),
					goerr.T(errs.TagNotFound))
			}
			return goerr.Wrap(err, "failed to get chat history in transaction",
				goerr.TV(errutil.ChatIDKey, id),
				goerr.T(errs.TagDatabase))
		}

		var history chat.History
		if err := doc.DataTo(&history); err != nil {
			return goerr.Wrap(err, "failed to convert data to chat history",
				goerr.TV(errutil.ChatIDKey, id),
				goerr.T(errs.TagInternal))
		}

		changed, err := history.Apply(ctx, response, status)
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}

		return tx.Update(docRef, []firestore.Update{
			{Path: "response", Value: history.Response},
			{Path: "status", Value: history.Status},
			{Path: "updated_at", Value: history.UpdatedAt},
		})
	})
	if err != nil {
		return r.eb.Wrap(err, "failed to update chat history",
			goerr.TV(errutil.ChatIDKey, id),
			goerr.TV(errutil.NextStatusKey, status))
	}

	return nil
}

func (r *Firestore) GetChatHistory(ctx context.Context, id types.ChatID) (*chat.History, error) {
	doc, err := r.db.Collection(CollectionChatHistories).Doc(id.String()).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, r.eb.Wrap(err, "failed to get chat history",
			goerr.TV(errutil.ChatIDKey, id),
			goerr.T(errs.TagDatabase))
	}

	var history chat.History
	if err := doc.DataTo(&history); err != nil {
		return nil, r.eb.Wrap(err, "failed to convert data to chat history",
			goerr.TV(errutil.ChatIDKey, id),
			goerr.T(errs.TagInternal))
	}

	return &history, nil
}

// ListChatHistories requires the (owner_id ASC, created_at ASC) composite
// index created by the migrate command.
func (r *Firestore) ListChatHistories(ctx context.Context, ownerID types.UserID) (chat.Histories, error) {
	iter := r.db.Collection(CollectionChatHistories).
		Where("owner_id", "==", ownerID.String()).
		OrderBy("created_at", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	var histories chat.Histories
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, r.eb.Wrap(err, "failed to query chat histories",
				goerr.TV(errutil.UserIDKey, ownerID),
				goerr.T(errs.TagDatabase))
		}

		var history chat.History
		if err := doc.DataTo(&history); err != nil {
			return nil, r.eb.Wrap(err, "failed to convert data to chat history",
				goerr.V("doc_id", doc.Ref.ID),
				goerr.T(errs.TagInternal))
		}
		histories = append(histories, &history)
	}

	return histories, nil
}

func (r *Firestore) GetUser(ctx context.Context, id types.UserID) (*profile.User, error) {
	doc, err := r.db.Collection(CollectionUsers).Doc(id.String()).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, r.eb.Wrap(err, "failed to get user",
			goerr.TV(errutil.UserIDKey, id),
			goerr.T(errs.TagDatabase))
	}

	var user profile.User
	if err := doc.DataTo(&user); err != nil {
		return nil, r.eb.Wrap(err, "failed to convert data to user",
			goerr.TV(errutil.UserIDKey, id),
			goerr.T(errs.TagInternal))
	}

	return &user, nil
}

func (r *Firestore) PutUser(ctx context.Context, user *profile.User) error {
	if user.ID == "" {
		return r.eb.New("user id is required", goerr.T(errs.TagValidation))
	}

	if _, err := r.db.Collection(CollectionUsers).Doc(user.ID.String()).Set(ctx, user); err != nil {
		return r.eb.Wrap(err, "failed to put user",
			goerr.TV(errutil.UserIDKey, user.ID),
			goerr.T(errs.TagDatabase))
	}
	return nil
}

func (r *Firestore) PutRecommendations(ctx context.Context, id types.UserID, recs *profile.Recommendations) error {
	_, err := r.db.Collection(CollectionUsers).Doc(id.String()).Update(ctx, []firestore.Update{
		{Path: "onboarding.university_recommendations", Value: recs},
	})
	if err != nil {
		if isNotFound(err) {
			return r.eb.Wrap(err, "user not found",
				goerr.TV(errutil.UserIDKey, id),
				goerr.T(errs.TagNotFound))
		}
		return r.eb.Wrap(err, "failed to put recommendations",
			goerr.TV(errutil.UserIDKey, id),
			goerr.T(errs.TagDatabase))
	}
	return nil
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}
