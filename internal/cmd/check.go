package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matthieukhl/reword/internal/config"
	"github.com/matthieukhl/reword/internal/llm"
	"github.com/matthieukhl/reword/internal/logging"
	"github.com/matthieukhl/reword/internal/types"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Test the Ollama server connection",
	Long: `Test the connection to the configured Ollama server with a tiny
generation request. This helps verify the server address and model name
before wiring reword into an editor.`,
	RunE: checkConnection,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func checkConnection(cmd *cobra.Command, args []string) error {
	fmt.Println("🧪 Testing Ollama connection...")

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

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if lister, ok := generator.(types.ModelLister); ok {
		fmt.Printf("🔎 Listing models on %s...\n", store.Ollama.BaseURL)
		models, err := lister.ListModels(ctx)
		if err != nil {
			return fmt.Errorf("failed to reach server: %w", err)
		}
		fmt.Printf("   ✅ Server is up, %d model(s) installed\n", len(models))
	}

	fmt.Printf("🤖 Testing generation (%s)...\n", store.Ollama.Model)
	response, err := generator.Generate(ctx, "Reply with the single word: ready", types.GenerationOptions{
		Model:       store.Ollama.Model,
		Temperature: 0,
		MaxTokens:   8,
	})
	if err != nil {
		return fmt.Errorf("failed to generate response: %w", err)
	}
	fmt.Printf("   ✅ Model responded: %s\n", response)

	fmt.Println("\n🎉 Everything is working, reword is ready to use!")
	return nil
}
