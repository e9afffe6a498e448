package interfaces

import (
	"context"
	"iter"
)

// TextStreamer opens a generation stream for the prompt and yields text
// fragments in arrival order. An error ends the sequence.
type TextStreamer interface {
	StreamText(ctx context.Context, prompt string) iter.Seq2[string, error]
}
