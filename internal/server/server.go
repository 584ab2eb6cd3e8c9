// Package server is the HTTP host adapter: editor hosts that cannot embed
// the Go API drive the improve pipeline over a local HTTP endpoint.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/matthieukhl/reword/internal/app"
	"github.com/matthieukhl/reword/internal/config"
	"github.com/matthieukhl/reword/internal/editor"
	"github.com/matthieukhl/reword/internal/improve"
	"github.com/matthieukhl/reword/internal/llm/generate"
	"github.com/matthieukhl/reword/internal/types"
)

type Server struct {
	router    *gin.Engine
	store     *config.Store
	improver  *improve.Improver
	generator types.Generator
	app       *app.App
	registry  *app.MemoryRegistry
	logger    *zap.Logger
}

// NewServer creates a new server instance
func NewServer(store *config.Store, improver *improve.Improver, generator types.Generator, application *app.App, registry *app.MemoryRegistry, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	router := gin.Default()

	server := &Server{
		router:    router,
		store:     store,
		improver:  improver,
		generator: generator,
		app:       application,
		registry:  registry,
		logger:    logger,
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.Group("/api")
	{
		api.GET("/health", s.healthCheck)
		api.GET("/models", s.listModels)
		api.POST("/improve", s.improveSelection)
		if s.app != nil {
			api.GET("/commands", s.listCommands)
			api.PUT("/hotkey", s.applyHotkey)
		}
	}
}

type improveRequest struct {
	Text      string     `json:"text"`
	Selection *selection `json:"selection"`
}

type selection struct {
	Start editor.Pos `json:"start"`
	End   editor.Pos `json:"end"`
}

type improveResponse struct {
	Text   string     `json:"text"`
	Cursor editor.Pos `json:"cursor"`
}

// improveSelection runs the placement pipeline against a buffer built from
// the request document. Pacing is forced off: the typewriter effect has no
// surface across an HTTP round-trip. On any failure the original document
// comes back untouched in the error response semantics, because the buffer
// only lives for this request.
func (s *Server) improveSelection(c *gin.Context) {
	var req improveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Selection == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "selection is required"})
		return
	}

	buf := editor.NewTextBuffer(req.Text)
	buf.Select(req.Selection.Start, req.Selection.End)

	if err := s.improver.ImproveInstant(c.Request.Context(), buf); err != nil {
		status := http.StatusBadGateway
		switch {
		case errors.Is(err, improve.ErrNoSelection):
			status = http.StatusBadRequest
		case errors.Is(err, improve.ErrBusy):
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, improveResponse{Text: buf.Text(), Cursor: buf.Cursor()})
}

// listModels proxies the inference server's tags endpoint.
func (s *Server) listModels(c *gin.Context) {
	lister, ok := s.generator.(types.ModelLister)
	if !ok {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "configured provider cannot list models"})
		return
	}
	models, err := lister.ListModels(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	out := make([]gin.H, 0, len(models))
	for _, m := range models {
		out = append(out, gin.H{
			"name":        m.Name,
			"modified_at": m.ModifiedAt,
			"size":        m.Size,
		})
	}
	c.JSON(http.StatusOK, gin.H{"models": out})
}

// healthCheck endpoint for monitoring
func (s *Server) healthCheck(c *gin.Context) {
	// Reachability of the inference server is the only upstream that matters
	if lister, ok := s.generator.(types.ModelLister); ok {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()
		if _, err := lister.ListModels(ctx); err != nil {
			var apiErr *generate.APIError
			detail := "inference server unreachable"
			if errors.As(err, &apiErr) {
				detail = apiErr.Error()
			}
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "error",
				"error":  detail,
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "reword",
		"model":   s.generator.Model(),
	})
}

func (s *Server) listCommands(c *gin.Context) {
	commands := s.registry.List()
	out := make([]gin.H, 0, len(commands))
	for _, cmd := range commands {
		entry := gin.H{"id": cmd.ID, "name": cmd.Name}
		if cmd.Chord != nil {
			entry["hotkey"] = cmd.Chord.String()
		}
		out = append(out, entry)
	}
	c.JSON(http.StatusOK, gin.H{"commands": out})
}

type hotkeyRequest struct {
	Chord string `json:"chord"`
}

// applyHotkey persists a new hotkey and re-registers the bound command.
func (s *Server) applyHotkey(c *gin.Context) {
	var req hotkeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.app.ApplyHotkey(req.Chord); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"chord": s.store.Hotkey.Chord})
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start(addr string) error {
	return s.router.Run(addr)
}
