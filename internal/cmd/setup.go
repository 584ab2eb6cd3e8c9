package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matthieukhl/reword/internal/config"
)

var setupForce bool

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Write the default configuration file",
	Long: `Creates the configuration directory and writes a config.yaml populated
with the defaults, ready to edit. Existing files are left alone unless
--force is given.`,
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)

	setupCmd.Flags().BoolVar(&setupForce, "force", false, "Overwrite an existing config file")
}

func runSetup(cmd *cobra.Command, args []string) error {
	fmt.Println("🔧 Setting up reword...")

	path := filepath.Join(config.Dir(), "config.yaml")
	if _, err := os.Stat(path); err == nil && !setupForce {
		fmt.Printf("⚠️  %s already exists, use --force to overwrite\n", path)
		return nil
	}

	if err := config.Default().Save(); err != nil {
		return fmt.Errorf("failed to write default config: %w", err)
	}

	fmt.Printf("✅ Wrote %s\n", path)
	fmt.Println("📝 Edit it to point at your Ollama server and preferred model.")
	return nil
}
