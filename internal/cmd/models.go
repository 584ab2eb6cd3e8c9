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

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the models installed on the Ollama server",
	RunE:  listModels,
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}

func listModels(cmd *cobra.Command, args []string) error {
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
	lister, ok := generator.(types.ModelLister)
	if !ok {
		return fmt.Errorf("provider %q cannot list models", store.Ollama.Provider)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	models, err := lister.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("failed to list models: %w", err)
	}
	if len(models) == 0 {
		fmt.Println("No models installed. Try `ollama pull` first.")
		return nil
	}

	fmt.Printf("Models on %s:\n", store.Ollama.BaseURL)
	for _, m := range models {
		fmt.Printf(" %-40s %8.1f GB  %s\n",
			m.Name,
			float64(m.Size)/(1024*1024*1024),
			m.ModifiedAt.Format("2006-01-02 15:04"))
	}
	return nil
}
