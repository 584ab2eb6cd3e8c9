package generate

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/matthieukhl/reword/internal/types"
)

// ErrEmptyResponse is returned when a generation decodes to zero characters.
// An empty generation is a failure, not a valid empty result: the caller
// replaces a non-empty placeholder with whatever comes back.
var ErrEmptyResponse = errors.New("model returned an empty response")

// APIError reports a non-2xx status from the inference server.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ollama API error %d: %s", e.StatusCode, e.Body)
}

// OllamaGenerator talks to a locally hosted Ollama server.
type OllamaGenerator struct {
	baseURL string
	model   string
	client  *http.Client
	logger  *zap.Logger
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

type ollamaRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	System  string        `json:"system,omitempty"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options"`
}

type ollamaTagsResponse struct {
	Models []struct {
		Name       string    `json:"name"`
		ModifiedAt time.Time `json:"modified_at"`
		Size       int64     `json:"size"`
	} `json:"models"`
}

func NewOllamaGenerator(baseURL, model string, logger *zap.Logger) *OllamaGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OllamaGenerator{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   model,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
		logger: logger,
	}
}

// Generate runs a blocking generation and returns the concatenated text of
// every decoded fragment, in order.
func (g *OllamaGenerator) Generate(ctx context.Context, prompt string, opts types.GenerationOptions) (string, error) {
	resp, err := g.post(ctx, prompt, opts, false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var sb strings.Builder
	for _, frag := range DecodeStream(string(body), g.logger) {
		sb.WriteString(frag.Text)
	}
	if sb.Len() == 0 {
		return "", ErrEmptyResponse
	}
	return sb.String(), nil
}

// GenerateStream runs a streaming generation, invoking onFragment once per
// decoded fragment as lines arrive off the wire.
func (g *OllamaGenerator) GenerateStream(ctx context.Context, prompt string, opts types.GenerationOptions, onFragment func(types.Fragment)) error {
	resp, err := g.post(ctx, prompt, opts, true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if frag, ok := decodeLine(scanner.Text(), g.logger); ok {
			onFragment(frag)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read response stream: %w", err)
	}
	return nil
}

// ListModels queries the tags endpoint for the installed models.
func (g *OllamaGenerator) ListModels(ctx context.Context) ([]types.Model, error) {
	httpReq, err := http.NewRequestWithContext(ctx, "GET", g.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var tags ollamaTagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	models := make([]types.Model, 0, len(tags.Models))
	for _, m := range tags.Models {
		models = append(models, types.Model{
			Name:       m.Name,
			ModifiedAt: m.ModifiedAt,
			Size:       m.Size,
		})
	}
	return models, nil
}

func (g *OllamaGenerator) Model() string {
	return g.model
}

func (g *OllamaGenerator) post(ctx context.Context, prompt string, opts types.GenerationOptions, stream bool) (*http.Response, error) {
	model := opts.Model
	if model == "" {
		model = g.model
	}
	req := ollamaRequest{
		Model:  model,
		Prompt: prompt,
		System: opts.SystemPrompt,
		Stream: stream,
		Options: ollamaOptions{
			Temperature: opts.Temperature,
			NumPredict:  opts.MaxTokens,
		},
	}

	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", g.baseURL+"/api/generate", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return resp, nil
}

// Compile-time interface checks
var (
	_ types.Generator       = (*OllamaGenerator)(nil)
	_ types.StreamGenerator = (*OllamaGenerator)(nil)
	_ types.ModelLister     = (*OllamaGenerator)(nil)
)
