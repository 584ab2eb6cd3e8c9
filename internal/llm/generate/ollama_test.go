package generate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/matthieukhl/reword/internal/types"
)

func testOptions() types.GenerationOptions {
	return types.GenerationOptions{
		Model:        "llama3.2:latest",
		SystemPrompt: "You are a careful copy editor.",
		Temperature:  0.5,
		MaxTokens:    256,
	}
}

func TestGenerateConcatenatesFragments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/generate", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)

		var req ollamaRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama3.2:latest", req.Model)
		assert.Equal(t, "make it nicer", req.Prompt)
		assert.Equal(t, "You are a careful copy editor.", req.System)
		assert.False(t, req.Stream)
		assert.Equal(t, 0.5, req.Options.Temperature)
		assert.Equal(t, 256, req.Options.NumPredict)

		fmt.Fprintln(w, `{"response":"This ","done":false}`)
		fmt.Fprintln(w, `{"response":"is better.","done":true}`)
	}))
	defer srv.Close()

	g := NewOllamaGenerator(srv.URL, "llama3.2:latest", zap.NewNop())
	out, err := g.Generate(context.Background(), "make it nicer", testOptions())
	require.NoError(t, err)
	assert.Equal(t, "This is better.", out)
}

func TestGenerateToleratesMalformedLines(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"response":"kept ","done":false}`)
		fmt.Fprintln(w, `{"resp`) // truncated line from the server
		fmt.Fprintln(w, `{"response":"anyway.","done":true}`)
	}))
	defer srv.Close()

	g := NewOllamaGenerator(srv.URL, "llama3.2:latest", zap.NewNop())
	out, err := g.Generate(context.Background(), "p", testOptions())
	require.NoError(t, err)
	assert.Equal(t, "kept anyway.", out)
}

func TestGenerateEmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"response":"","done":true}`)
	}))
	defer srv.Close()

	g := NewOllamaGenerator(srv.URL, "llama3.2:latest", zap.NewNop())
	_, err := g.Generate(context.Background(), "p", testOptions())
	require.ErrorIs(t, err, ErrEmptyResponse)
}

func TestGenerateServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"model not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	g := NewOllamaGenerator(srv.URL, "nope", zap.NewNop())
	_, err := g.Generate(context.Background(), "p", testOptions())
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "model not found")
}

func TestGenerateConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listens anymore

	g := NewOllamaGenerator(srv.URL, "llama3.2:latest", zap.NewNop())
	_, err := g.Generate(context.Background(), "p", testOptions())
	require.Error(t, err)

	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr), "transport failures are not API errors")
}

func TestGenerateStreamDeliversFragmentsInOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ollamaRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.Stream)

		flusher := w.(http.Flusher)
		fmt.Fprintln(w, `{"response":"This ","done":false}`)
		flusher.Flush()
		fmt.Fprintln(w, `{"response":"is better.","done":true}`)
	}))
	defer srv.Close()

	g := NewOllamaGenerator(srv.URL, "llama3.2:latest", zap.NewNop())

	var got []types.Fragment
	err := g.GenerateStream(context.Background(), "p", testOptions(), func(frag types.Fragment) {
		got = append(got, frag)
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "This ", got[0].Text)
	assert.False(t, got[0].Done)
	assert.Equal(t, "is better.", got[1].Text)
	assert.True(t, got[1].Done)
}

func TestListModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/tags", r.URL.Path)
		fmt.Fprintln(w, `{"models":[
			{"name":"llama3.2:latest","modified_at":"2024-11-02T10:04:05Z","size":2019393189},
			{"name":"mistral:7b","modified_at":"2024-10-20T08:00:00Z","size":4113301824}
		]}`)
	}))
	defer srv.Close()

	g := NewOllamaGenerator(srv.URL, "llama3.2:latest", zap.NewNop())
	models, err := g.ListModels(context.Background())
	require.NoError(t, err)
	require.Len(t, models, 2)
	assert.Equal(t, "llama3.2:latest", models[0].Name)
	assert.Equal(t, int64(2019393189), models[0].Size)
	assert.Equal(t, 2024, models[0].ModifiedAt.Year())
	assert.Equal(t, "mistral:7b", models[1].Name)
}
