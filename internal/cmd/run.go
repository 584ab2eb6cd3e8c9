package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matthieukhl/reword/internal/app"
	"github.com/matthieukhl/reword/internal/config"
	"github.com/matthieukhl/reword/internal/improve"
	"github.com/matthieukhl/reword/internal/llm"
	"github.com/matthieukhl/reword/internal/logging"
	"github.com/matthieukhl/reword/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Reword host adapter",
	Long: `Start the Reword host adapter which provides:
- POST /api/improve to run the improve pipeline on a document selection
- GET /api/models to list the models installed on the Ollama server
- GET /api/commands and PUT /api/hotkey for host command integration`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	fmt.Println("🚀 Reword starting...")

	fmt.Println("📝 Loading configuration...")
	store, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.New(store.Log.File, debug)
	defer logger.Sync()

	generator, err := llm.NewGenerator(&store.Ollama, logger)
	if err != nil {
		return fmt.Errorf("failed to create generator: %w", err)
	}
	fmt.Printf("🤖 Using %s via %s\n", store.Ollama.Model, store.Ollama.BaseURL)

	notifier := &app.LogNotifier{Logger: logger}
	improver := improve.NewImprover(&store.Config, generator, notifier, logger)

	registry := app.NewMemoryRegistry()
	application := app.New(store, improver, registry, nil, logger)
	if err := application.Start(); err != nil {
		return fmt.Errorf("failed to start app: %w", err)
	}
	defer application.Stop()

	srv := server.NewServer(store, improver, generator, application, registry, logger)

	fmt.Printf("🌐 Listening on %s...\n", store.Server.Addr)
	if err := srv.Start(store.Server.Addr); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
