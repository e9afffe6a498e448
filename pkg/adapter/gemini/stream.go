package gemini

import (
	"context"
	"iter"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/counsellor/pkg/domain/interfaces"
	"github.com/secmon-lab/counsellor/pkg/utils/logging"
	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.5-flash"

// contentStreamer is the part of genai.Models used by Streamer
type contentStreamer interface {
	GenerateContentStream(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error]
}

// Streamer streams text from Gemini models.
type Streamer struct {
	models      contentStreamer
	model       string
	temperature *float32
}

var _ interfaces.TextStreamer = &Streamer{}

type Option func(*Streamer)

func WithModel(model string) Option {
	return func(x *Streamer) {
		x.model = model
	}
}

func WithTemperature(t float32) Option {
	return func(x *Streamer) {
		x.temperature = genai.Ptr(t)
	}
}

// New creates a Streamer from an already configured genai client. The client
// is meant to be shared by the whole process.
func New(client *genai.Client, opts ...Option) (*Streamer, error) {
	if client == nil || client.Models == nil {
		return nil, goerr.New("genai client is required")
	}
	return newStreamer(client.Models, opts...), nil
}

// NewClient creates a genai client. With an API key the Gemini API is used,
// otherwise Vertex AI in the given project and location.
func NewClient(ctx context.Context, apiKey, projectID, location string) (*genai.Client, error) {
	cfg := &genai.ClientConfig{}
	switch {
	case apiKey != "":
		cfg.APIKey = apiKey
		cfg.Backend = genai.BackendGeminiAPI
	case projectID != "":
		cfg.Project = projectID
		cfg.Location = location
		cfg.Backend = genai.BackendVertexAI
	default:
		return nil, goerr.New("either gemini api key or project id is required")
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create genai client",
			goerr.V("project_id", projectID),
			goerr.V("location", location),
			goerr.V("backend", cfg.Backend.String()))
	}
	return client, nil
}

func newStreamer(models contentStreamer, opts ...Option) *Streamer {
	x := &Streamer{
		models: models,
		model:  DefaultModel,
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

func (x *Streamer) Model() string {
	return x.model
}

// StreamText sends prompt as a single user turn and yields text fragments in
// arrival order. Empty and non-text parts are skipped. Provider errors are
// yielded once, translated, and end the sequence.
func (x *Streamer) StreamText(ctx context.Context, prompt string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		var cfg *genai.GenerateContentConfig
		if x.temperature != nil {
			cfg = &genai.GenerateContentConfig{Temperature: x.temperature}
		}

		logging.From(ctx).Debug("start gemini stream", "model", x.model, "prompt_length", len(prompt))

		for resp, err := range x.models.GenerateContentStream(ctx, x.model, genai.Text(prompt), cfg) {
			if err != nil {
				yield("", translateError(err, x.model))
				return
			}

			text := fragmentText(resp)
			if text == "" {
				continue
			}
			if !yield(text, nil) {
				return
			}
		}
	}
}

func fragmentText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	candidate := resp.Candidates[0]
	if candidate == nil || candidate.Content == nil {
		return ""
	}

	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		b.WriteString(part.Text)
	}
	return b.String()
}
