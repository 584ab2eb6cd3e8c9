package types

import (
	"context"
	"time"
)

// Fragment is one decoded unit of generated text, in emission order.
type Fragment struct {
	Text string
	Done bool
}

// Model describes a model installed on the inference server.
type Model struct {
	Name       string
	ModifiedAt time.Time
	Size       int64
}

// GenerationOptions contains options for text generation
type GenerationOptions struct {
	Model        string
	SystemPrompt string
	Temperature  float64
	MaxTokens    int
}

// Generator produces complete text generations from prompts
type Generator interface {
	Generate(ctx context.Context, prompt string, opts GenerationOptions) (string, error)
	Model() string
}

// StreamGenerator delivers a generation fragment by fragment, in order,
// through the callback.
type StreamGenerator interface {
	GenerateStream(ctx context.Context, prompt string, opts GenerationOptions, onFragment func(Fragment)) error
}

// ModelLister enumerates the models the inference server has available.
type ModelLister interface {
	ListModels(ctx context.Context) ([]Model, error)
}
