package generate

import (
	"context"
	"strings"
	"time"
	"unicode"

	"github.com/matthieukhl/reword/internal/types"
)

// MockGenerator produces a deterministic "improved" rendition of the prompt
// without any network access. Useful for tests and for trying the pipeline
// before an Ollama server is installed.
type MockGenerator struct {
	model string
}

func NewMockGenerator(model string) *MockGenerator {
	return &MockGenerator{model: model}
}

func (g *MockGenerator) Generate(ctx context.Context, prompt string, opts types.GenerationOptions) (string, error) {
	// Simulate API delay
	time.Sleep(100 * time.Millisecond)
	return improveText(prompt), nil
}

func (g *MockGenerator) GenerateStream(ctx context.Context, prompt string, opts types.GenerationOptions, onFragment func(types.Fragment)) error {
	words := strings.SplitAfter(improveText(prompt), " ")
	for i, w := range words {
		onFragment(types.Fragment{Text: w, Done: i == len(words)-1})
	}
	return nil
}

func (g *MockGenerator) ListModels(ctx context.Context) ([]types.Model, error) {
	return []types.Model{
		{Name: g.Model(), ModifiedAt: time.Now(), Size: 0},
	}, nil
}

func (g *MockGenerator) Model() string {
	return g.model + "-mock"
}

// improveText applies the most boring improvements imaginable: trim the
// selection, capitalize the first letter, and close with a period. The point
// is a visible, deterministic change, not good prose.
func improveText(s string) string {
	// The prompt template wraps the selection; improve only the last block.
	if idx := strings.LastIndex(s, "\n\n"); idx >= 0 {
		s = s[idx+2:]
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	s = string(runes)
	if !strings.HasSuffix(s, ".") && !strings.HasSuffix(s, "!") && !strings.HasSuffix(s, "?") {
		s += "."
	}
	return s
}

// Compile-time interface checks
var (
	_ types.Generator       = (*MockGenerator)(nil)
	_ types.StreamGenerator = (*MockGenerator)(nil)
	_ types.ModelLister     = (*MockGenerator)(nil)
)
