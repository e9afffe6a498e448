package gemini_test

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"os"
	"strings"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/counsellor/pkg/adapter/gemini"
	"github.com/secmon-lab/counsellor/pkg/domain/model/errs"
	"google.golang.org/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func textResponse(parts ...*genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Role: "model", Parts: parts}},
		},
	}
}

func responses(items ...any) gemini.ContentStreamFunc {
	return func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error] {
		return func(yield func(*genai.GenerateContentResponse, error) bool) {
			for _, item := range items {
				switch v := item.(type) {
				case error:
					if !yield(nil, v) {
						return
					}
				case *genai.GenerateContentResponse:
					if !yield(v, nil) {
						return
					}
				}
			}
		}
	}
}

func collect(t *testing.T, seq iter.Seq2[string, error]) ([]string, error) {
	t.Helper()
	var fragments []string
	for fragment, err := range seq {
		if err != nil {
			return fragments, err
		}
		fragments = append(fragments, fragment)
	}
	return fragments, nil
}

func TestStreamText(t *testing.T) {
	t.Run("fragments in order", func(t *testing.T) {
		var gotModel string
		var gotPrompt string
		var gotConfig *genai.GenerateContentConfig

		f := func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error] {
			gotModel = model
			gotConfig = config
			if len(contents) > 0 && len(contents[0].Parts) > 0 {
				gotPrompt = contents[0].Parts[0].Text
			}
			return responses(
				textResponse(genai.NewPartFromText("You should ")),
				textResponse(genai.NewPartFromText("aim for 320+.")),
			)(ctx, model, contents, config)
		}

		s := gemini.NewWithStreamFunc(f, gemini.WithModel("gemini-test"), gemini.WithTemperature(0.6))
		fragments, err := collect(t, s.StreamText(context.Background(), "What GRE score do I need?"))
		gt.NoError(t, err)
		gt.Equal(t, fragments, []string{"You should ", "aim for 320+."})
		gt.Equal(t, gotModel, "gemini-test")
		gt.Equal(t, gotPrompt, "What GRE score do I need?")
		gt.NotNil(t, gotConfig)
		gt.Equal(t, *gotConfig.Temperature, float32(0.6))
	})

	t.Run("default model and no config", func(t *testing.T) {
		var gotModel string
		var gotConfig *genai.GenerateContentConfig
		f := func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error] {
			gotModel = model
			gotConfig = config
			return responses()(ctx, model, contents, config)
		}

		s := gemini.NewWithStreamFunc(f)
		fragments, err := collect(t, s.StreamText(context.Background(), "hi"))
		gt.NoError(t, err)
		gt.A(t, fragments).Length(0)
		gt.Equal(t, gotModel, gemini.DefaultModel)
		gt.Nil(t, gotConfig)
	})

	t.Run("skip empty and non-text parts", func(t *testing.T) {
		s := gemini.NewWithStreamFunc(responses(
			(*genai.GenerateContentResponse)(nil),
			&genai.GenerateContentResponse{},
			textResponse(),
			textResponse(&genai.Part{Text: "thinking...", Thought: true}),
			textResponse(&genai.Part{InlineData: &genai.Blob{MIMEType: "image/png", Data: []byte{0x1}}}),
			textResponse(genai.NewPartFromText("Hello")),
			&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}},
			textResponse(genai.NewPartFromText(" "), genai.NewPartFromText("world")),
		))

		fragments, err := collect(t, s.StreamText(context.Background(), "hi"))
		gt.NoError(t, err)
		gt.Equal(t, fragments, []string{"Hello", " world"})
	})

	t.Run("error ends the sequence", func(t *testing.T) {
		s := gemini.NewWithStreamFunc(responses(
			textResponse(genai.NewPartFromText("Partial answer")),
			errors.New("unexpected EOF"),
			textResponse(genai.NewPartFromText("never")),
		))

		fragments, err := collect(t, s.StreamText(context.Background(), "hi"))
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, errs.TagExternal))
		gt.Equal(t, fragments, []string{"Partial answer"})
	})

	t.Run("consumer stops early", func(t *testing.T) {
		s := gemini.NewWithStreamFunc(responses(
			textResponse(genai.NewPartFromText("a")),
			textResponse(genai.NewPartFromText("b")),
		))

		var got []string
		for fragment, err := range s.StreamText(context.Background(), "hi") {
			gt.NoError(t, err)
			got = append(got, fragment)
			break
		}
		gt.Equal(t, got, []string{"a"})
	})

	t.Run("rate limit before first fragment", func(t *testing.T) {
		s := gemini.NewWithStreamFunc(responses(
			genai.APIError{Code: 429, Message: "Resource has been exhausted", Status: "RESOURCE_EXHAUSTED"},
		))

		fragments, err := collect(t, s.StreamText(context.Background(), "hi"))
		gt.Error(t, err)
		gt.A(t, fragments).Length(0)
		gt.True(t, goerr.HasTag(err, errs.TagRateLimit))
	})
}

func TestTranslateError(t *testing.T) {
	testCases := []struct {
		name    string
		err     error
		limited bool
	}{
		{"api error 429", genai.APIError{Code: 429}, true},
		{"api error pointer", &genai.APIError{Code: 429}, true},
		{"api error status", genai.APIError{Code: 400, Status: "RESOURCE_EXHAUSTED"}, true},
		{"wrapped api error", fmt.Errorf("stream: %w", genai.APIError{Code: 429}), true},
		{"grpc resource exhausted", status.Error(codes.ResourceExhausted, "quota"), true},
		{"message with 429", errors.New("got HTTP 429 from upstream"), true},
		{"api error 500", genai.APIError{Code: 500, Status: "INTERNAL"}, false},
		{"api error 503", genai.APIError{Code: 503, Status: "UNAVAILABLE"}, false},
		{"grpc unavailable", status.Error(codes.Unavailable, "down"), false},
		{"plain error", errors.New("connection reset"), false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gt.Equal(t, gemini.IsRateLimited(tc.err), tc.limited)

			err := gemini.TranslateError(tc.err, "gemini-test")
			gt.Equal(t, goerr.HasTag(err, errs.TagRateLimit), tc.limited)
			gt.Equal(t, goerr.HasTag(err, errs.TagExternal), !tc.limited)
			gt.True(t, errors.Is(err, tc.err) || strings.Contains(err.Error(), tc.err.Error()))
		})
	}
}

func TestNewRequiresClient(t *testing.T) {
	_, err := gemini.New(nil)
	gt.Error(t, err)
}

func TestNewClientRequiresCredential(t *testing.T) {
	_, err := gemini.NewClient(context.Background(), "", "", "")
	gt.Error(t, err)
}

func TestStreamTextWithGemini(t *testing.T) {
	apiKey, ok := os.LookupEnv("TEST_GEMINI_API_KEY")
	if !ok {
		t.Skip("TEST_GEMINI_API_KEY is not set")
	}

	ctx := context.Background()
	client, err := gemini.NewClient(ctx, apiKey, "", "")
	gt.NoError(t, err).Required()
	s, err := gemini.New(client)
	gt.NoError(t, err).Required()

	fragments, err := collect(t, s.StreamText(ctx, "Reply with the single word: hello"))
	gt.NoError(t, err)
	gt.S(t, strings.ToLower(strings.Join(fragments, ""))).Contains("hello")
}
