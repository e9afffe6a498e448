package usecase

import (
	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/counsellor/pkg/domain/interfaces"
	"github.com/secmon-lab/counsellor/pkg/repository"
	"github.com/secmon-lab/counsellor/pkg/service/prompt"
	"github.com/secmon-lab/counsellor/pkg/service/relay"
)

type UseCases struct {
	// services and adapters
	repository interfaces.Repository
	streamer   interfaces.TextStreamer
	llmClient  gollem.LLMClient
	prompt     interfaces.PromptService

	relayOptions []relay.Option
	relay        *relay.Relay
}

var _ interfaces.ChatUsecases = &UseCases{}
var _ interfaces.ProfileUsecases = &UseCases{}
var _ interfaces.OnboardingUsecases = &UseCases{}

type Option func(*UseCases)

func WithRepository(repository interfaces.Repository) Option {
	return func(u *UseCases) {
		u.repository = repository
	}
}

// WithTextStreamer sets the upstream used for streamed chat answers
func WithTextStreamer(streamer interfaces.TextStreamer) Option {
	return func(u *UseCases) {
		u.streamer = streamer
	}
}

// WithLLMClient sets the LLM used for JSON answers such as recommendations
func WithLLMClient(llmClient gollem.LLMClient) Option {
	return func(u *UseCases) {
		u.llmClient = llmClient
	}
}

func WithPromptService(svc interfaces.PromptService) Option {
	return func(u *UseCases) {
		u.prompt = svc
	}
}

func WithRelayOptions(opts ...relay.Option) Option {
	return func(u *UseCases) {
		u.relayOptions = append(u.relayOptions, opts...)
	}
}

func New(opts ...Option) *UseCases {
	u := &UseCases{
		repository: repository.NewMemory(),
	}

	for _, opt := range opts {
		opt(u)
	}

	if u.prompt == nil {
		u.prompt = prompt.Default()
	}
	if u.streamer != nil {
		u.relay = relay.New(u.repository, u.streamer, u.relayOptions...)
	}

	return u
}

// IsChatEnabled returns whether a text streamer is configured
func (u *UseCases) IsChatEnabled() bool {
	return u.relay != nil
}

// IsRecommendationEnabled returns whether an LLM client is configured
func (u *UseCases) IsRecommendationEnabled() bool {
	return u.llmClient != nil
}
