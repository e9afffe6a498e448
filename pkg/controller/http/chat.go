package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/counsellor/pkg/domain/interfaces"
	"github.com/secmon-lab/counsellor/pkg/domain/model/chat"
	"github.com/secmon-lab/counsellor/pkg/domain/model/errs"
	"github.com/secmon-lab/counsellor/pkg/domain/model/profile"
	"github.com/secmon-lab/counsellor/pkg/utils/logging"
	"github.com/secmon-lab/counsellor/pkg/utils/user"
)

type chatRequest struct {
	Message string `json:"message"`
}

type saveConversationRequest struct {
	Message  string `json:"message"`
	Response string `json:"response"`
}

type historyResponse struct {
	Success bool           `json:"success"`
	History chat.Histories `json:"history"`
}

type saveConversationResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Data    *chat.History `json:"data"`
}

type recommendationsResponse struct {
	Success         bool                     `json:"success"`
	Recommendations *profile.Recommendations `json:"recommendations"`
}

// chatHandler streams the counsellor answer as plain text
func chatHandler(uc interfaces.ChatUsecases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := user.FromContext(ctx)
		if userID == "" {
			writeError(w, r, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			handleError(w, r, goerr.Wrap(err, "failed to decode chat request", goerr.T(errs.TagInvalidRequest)))
			return
		}
		if strings.TrimSpace(req.Message) == "" {
			writeError(w, r, http.StatusBadRequest, "Message is required")
			return
		}

		tr := newStreamTransport(w, r)
		if _, err := uc.Chat(ctx, userID, req.Message, tr); err != nil {
			if tr.Began() {
				// the answer is already on the wire, nothing to report to the client
				logging.From(ctx).Error("chat failed after streaming started", logging.ErrAttr(err))
				return
			}
			handleError(w, r, err)
		}
	}
}

func getChatHistoryHandler(uc interfaces.ChatUsecases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := user.FromContext(ctx)
		if userID == "" {
			writeError(w, r, http.StatusUnauthorized, "Unauthorized")
			return
		}

		histories, err := uc.GetChatHistories(ctx, userID)
		if err != nil {
			handleError(w, r, err)
			return
		}

		writeJSON(w, r, http.StatusOK, historyResponse{Success: true, History: histories})
	}
}

func saveConversationHandler(uc interfaces.ChatUsecases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := user.FromContext(ctx)
		if userID == "" {
			writeError(w, r, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var req saveConversationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			handleError(w, r, goerr.Wrap(err, "failed to decode conversation", goerr.T(errs.TagInvalidRequest)))
			return
		}

		history, err := uc.SaveConversation(ctx, userID, req.Message, req.Response)
		if err != nil {
			handleError(w, r, err)
			return
		}

		writeJSON(w, r, http.StatusOK, saveConversationResponse{
			Success: true,
			Message: "Conversation saved",
			Data:    history,
		})
	}
}

func universitiesHandler(uc interfaces.ProfileUsecases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := user.FromContext(ctx)
		if userID == "" {
			writeError(w, r, http.StatusUnauthorized, "Unauthorized")
			return
		}

		recs, err := uc.GetUniversityRecommendations(ctx, userID)
		if err != nil {
			handleError(w, r, err)
			return
		}

		writeJSON(w, r, http.StatusOK, recommendationsResponse{Success: true, Recommendations: recs})
	}
}
