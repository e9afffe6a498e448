package gemini

import (
	"context"
	"iter"

	"google.golang.org/genai"
)

type ContentStreamFunc func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error]

func (f ContentStreamFunc) GenerateContentStream(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error] {
	return f(ctx, model, contents, config)
}

func NewWithStreamFunc(f ContentStreamFunc, opts ...Option) *Streamer {
	return newStreamer(f, opts...)
}

var (
	TranslateError = translateError
	IsRateLimited  = isRateLimited
	FragmentText   = fragmentText
)
