package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/secmon-lab/counsellor/pkg/domain/interfaces"
	"github.com/secmon-lab/counsellor/pkg/domain/model/auth"
	"github.com/secmon-lab/counsellor/pkg/utils/safe"
)

type Server struct {
	router   *chi.Mux
	verifier *auth.Verifier
	metrics  bool
}

type Options func(*Server)

// WithVerifier sets the session token verifier. Without it every API request
// is rejected.
func WithVerifier(verifier *auth.Verifier) Options {
	return func(s *Server) {
		s.verifier = verifier
	}
}

// WithMetrics exposes Prometheus metrics on /metrics
func WithMetrics(enabled bool) Options {
	return func(s *Server) {
		s.metrics = enabled
	}
}

type UseCase interface {
	interfaces.ChatUsecases
	interfaces.ProfileUsecases
	interfaces.OnboardingUsecases
}

func New(uc UseCase, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
	}
	for _, opt := range opts {
		opt(s)
	}

	r.Use(loggingMiddleware)
	r.Use(panicRecoveryMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		safe.Write(r.Context(), w, []byte("ok"))
	})

	if s.metrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api/onboarding", func(r chi.Router) {
		r.Use(authMiddleware(s.verifier))

		r.Get("/", getOnboardingHandler(uc))
		r.Post("/complete", completeOnboardingHandler(uc))
		r.Patch("/update", updateOnboardingHandler(uc))
	})

	r.Route("/api/chatbot", func(r chi.Router) {
		r.Use(authMiddleware(s.verifier))
		r.Use(onboardingMiddleware(uc))

		r.Post("/chat", chatHandler(uc))
		r.Get("/history", getChatHistoryHandler(uc))
		r.Post("/history", saveConversationHandler(uc))
		r.Get("/universities", universitiesHandler(uc))
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
