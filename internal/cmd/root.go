package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var debug bool

var rootCmd = &cobra.Command{
	Use:   "reword",
	Short: "Reword - improve selected text with a local LLM",
	Long: `Reword sends selected text to a locally hosted Ollama server and writes
the improved version back into the document.

Run it as a local host adapter ("reword serve") for editor integrations,
or use the CLI commands directly to improve text from files or stdin.`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
}
