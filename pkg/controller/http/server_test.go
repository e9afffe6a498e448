package http_test

import (
	"context"
	"encoding/json"
	"iter"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gollem/mock"
	"github.com/m-mizutani/gt"
	server "github.com/secmon-lab/counsellor/pkg/controller/http"
	"github.com/secmon-lab/counsellor/pkg/domain/model/auth"
	"github.com/secmon-lab/counsellor/pkg/domain/model/profile"
	"github.com/secmon-lab/counsellor/pkg/domain/types"
	"github.com/secmon-lab/counsellor/pkg/repository"
	"github.com/secmon-lab/counsellor/pkg/usecase"
)

const testSecret = "test-secret-for-counsellor"

// streamFunc is a TextStreamer built from a function
type streamFunc func(ctx context.Context, prompt string) iter.Seq2[string, error]

func (f streamFunc) StreamText(ctx context.Context, prompt string) iter.Seq2[string, error] {
	return f(ctx, prompt)
}

// fragments streams strings in order and then the error, if any
func fragments(err error, items ...string) streamFunc {
	return func(ctx context.Context, prompt string) iter.Seq2[string, error] {
		return func(yield func(string, error) bool) {
			for _, item := range items {
				if !yield(item, nil) {
					return
				}
			}
			if err != nil {
				yield("", err)
			}
		}
	}
}

type testEnv struct {
	repo     *repository.Memory
	verifier *auth.Verifier
	server   *server.Server
}

func newTestEnv(t *testing.T, opts ...usecase.Option) *testEnv {
	t.Helper()
	ctx := context.Background()

	repo := repository.NewMemory()
	gt.NoError(t, repo.PutUser(ctx, &profile.User{
		ID:                 "user-1",
		Email:              "student@example.com",
		OnboardingComplete: true,
		Onboarding: &profile.Onboarding{
			FieldOfStudy:       "Computer Science",
			PreferredCountries: []string{"Canada"},
		},
	}))
	gt.NoError(t, repo.PutUser(ctx, &profile.User{ID: "user-new"}))

	verifier, err := auth.NewVerifier(testSecret)
	gt.NoError(t, err).Required()

	uc := usecase.New(append([]usecase.Option{usecase.WithRepository(repo)}, opts...)...)
	return &testEnv{
		repo:     repo,
		verifier: verifier,
		server:   server.New(uc, server.WithVerifier(verifier), server.WithMetrics(true)),
	}
}

func (x *testEnv) token(t *testing.T, userID types.UserID) string {
	t.Helper()
	token, err := x.verifier.Issue(context.Background(), userID, "student@example.com", time.Hour)
	gt.NoError(t, err).Required()
	return token
}

func (x *testEnv) request(t *testing.T, method, path, body string, userID types.UserID) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: x.token(t, userID)})
	}
	w := httptest.NewRecorder()
	x.server.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &body)).Required()
	return body
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	w := env.request(t, http.MethodGet, "/health", "", "")
	gt.Equal(t, w.Code, http.StatusOK)
	gt.Equal(t, w.Body.String(), "ok")
}

func TestMetrics(t *testing.T) {
	env := newTestEnv(t, usecase.WithTextStreamer(fragments(nil, "hi")))

	w := env.request(t, http.MethodPost, "/api/chatbot/chat", `{"message":"hello"}`, "user-1")
	gt.Equal(t, w.Code, http.StatusOK)

	w = env.request(t, http.MethodGet, "/metrics", "", "")
	gt.Equal(t, w.Code, http.StatusOK)
	gt.S(t, w.Body.String()).Contains("counsellor_chat_sessions_total")
}

func TestMetricsDisabled(t *testing.T) {
	verifier, err := auth.NewVerifier(testSecret)
	gt.NoError(t, err).Required()
	srv := server.New(usecase.New(), server.WithVerifier(verifier))

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	gt.Equal(t, w.Code, http.StatusNotFound)
}

func TestHistoryHandlers(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(t, http.MethodGet, "/api/chatbot/history", "", "user-1")
	gt.Equal(t, w.Code, http.StatusOK)
	body := decodeBody(t, w)
	gt.Equal(t, body["success"], true)
	gt.A(t, body["history"].([]any)).Length(0)

	w = env.request(t, http.MethodPost, "/api/chatbot/history",
		`{"message":"Which intake?","response":"Fall 2026 fits your plan."}`, "user-1")
	gt.Equal(t, w.Code, http.StatusOK)
	body = decodeBody(t, w)
	gt.Equal(t, body["message"], "Conversation saved")
	data := body["data"].(map[string]any)
	gt.Equal(t, data["status"], "completed")
	gt.Equal(t, data["response"], "Fall 2026 fits your plan.")

	w = env.request(t, http.MethodGet, "/api/chatbot/history", "", "user-1")
	body = decodeBody(t, w)
	history := body["history"].([]any)
	gt.A(t, history).Length(1)
	gt.Equal(t, history[0].(map[string]any)["message"], "Which intake?")

	t.Run("save without message", func(t *testing.T) {
		w := env.request(t, http.MethodPost, "/api/chatbot/history", `{"response":"x"}`, "user-1")
		gt.Equal(t, w.Code, http.StatusBadRequest)
	})

	t.Run("broken body", func(t *testing.T) {
		w := env.request(t, http.MethodPost, "/api/chatbot/history", `{`, "user-1")
		gt.Equal(t, w.Code, http.StatusBadRequest)
		gt.Equal(t, decodeBody(t, w)["success"], false)
	})
}

func TestUniversitiesHandler(t *testing.T) {
	llmClient := &mock.LLMClientMock{
		NewSessionFunc: func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
			return &mock.SessionMock{
				GenerateContentFunc: func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
					return &gollem.Response{Texts: []string{"```json\n" + `{
						"dream": [{"name": "University of Toronto", "country": "Canada", "reason": "Strong CS", "risk": "Competitive", "imageUrl": null}],
						"target": [{"name": "University of Waterloo", "country": "Canada", "reason": "Co-op", "risk": "Moderate", "imageUrl": null}],
						"safe": [{"name": "Dalhousie University", "country": "Canada", "reason": "Fits GPA", "risk": "Low", "imageUrl": null}]
					}` + "\n```"}}, nil
				},
			}, nil
		},
	}
	env := newTestEnv(t, usecase.WithLLMClient(llmClient))

	w := env.request(t, http.MethodGet, "/api/chatbot/universities", "", "user-1")
	gt.Equal(t, w.Code, http.StatusOK)
	body := decodeBody(t, w)
	gt.Equal(t, body["success"], true)
	recs := body["recommendations"].(map[string]any)
	dream := recs["dream"].([]any)
	gt.A(t, dream).Length(1)
	gt.Equal(t, dream[0].(map[string]any)["name"], "University of Toronto")

	t.Run("not configured", func(t *testing.T) {
		env := newTestEnv(t)
		w := env.request(t, http.MethodGet, "/api/chatbot/universities", "", "user-1")
		gt.Equal(t, w.Code, http.StatusInternalServerError)
		gt.Equal(t, decodeBody(t, w)["message"], "Internal server error")
	})
}
