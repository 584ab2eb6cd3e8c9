package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matthieukhl/reword/internal/config"
	"github.com/matthieukhl/reword/internal/editor"
	"github.com/matthieukhl/reword/internal/improve"
	"github.com/matthieukhl/reword/internal/llm"
	"github.com/matthieukhl/reword/internal/logging"
	"github.com/matthieukhl/reword/internal/types"
)

var (
	improveStart   string
	improveEnd     string
	improveStream  bool
	improveReplace bool
)

var improveCmd = &cobra.Command{
	Use:   "improve [file]",
	Short: "Improve a text selection from a file or stdin",
	Long: `Read a document from the given file (or stdin), run the improve pipeline
on the selected region, and print the resulting document.

The selection defaults to the whole document; --start and --end take
1-based LINE:COL positions. With --stream, the generated text is printed
fragment by fragment as the server produces it, instead of rewriting the
document.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runImprove,
}

func init() {
	rootCmd.AddCommand(improveCmd)

	improveCmd.Flags().StringVar(&improveStart, "start", "", "Selection start as LINE:COL (1-based)")
	improveCmd.Flags().StringVar(&improveEnd, "end", "", "Selection end as LINE:COL (1-based)")
	improveCmd.Flags().BoolVar(&improveStream, "stream", false, "Print generated fragments as they arrive")
	improveCmd.Flags().BoolVar(&improveReplace, "replace", false, "Replace the selection instead of inserting below it")
}

// stderrNotifier keeps user feedback off stdout, which carries the document.
type stderrNotifier struct{}

func (stderrNotifier) Notify(message string) {
	fmt.Fprintln(os.Stderr, "💬 "+message)
}

func runImprove(cmd *cobra.Command, args []string) error {
	store, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cmd.Flags().Changed("replace") {
		store.Improve.ReplaceOriginal = improveReplace
	}

	logger := logging.New(store.Log.File, debug)
	defer logger.Sync()

	text, err := readDocument(args)
	if err != nil {
		return err
	}

	buf := editor.NewTextBuffer(text)
	if err := selectRegion(buf, text, improveStart, improveEnd); err != nil {
		return err
	}

	generator, err := llm.NewGenerator(&store.Ollama, logger)
	if err != nil {
		return fmt.Errorf("failed to create generator: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if improveStream {
		return streamImprove(ctx, store, generator, buf)
	}

	improver := improve.NewImprover(&store.Config, generator, stderrNotifier{}, logger)
	if err := improver.ImproveInstant(ctx, buf); err != nil {
		return err
	}
	fmt.Println(buf.Text())
	return nil
}

// streamImprove prints fragments to stdout as they are decoded, exercising
// the streaming endpoint instead of the placement pipeline.
func streamImprove(ctx context.Context, store *config.Store, generator types.Generator, buf *editor.TextBuffer) error {
	streamer, ok := generator.(types.StreamGenerator)
	if !ok {
		return fmt.Errorf("provider %q does not support streaming", store.Ollama.Provider)
	}

	selection, _, _ := buf.Selection()
	if strings.TrimSpace(selection) == "" {
		return improve.ErrNoSelection
	}
	prompt := strings.ReplaceAll(store.Improve.PromptTemplate, config.SelectionToken, selection)

	err := streamer.GenerateStream(ctx, prompt, types.GenerationOptions{
		Model:        store.Ollama.Model,
		SystemPrompt: store.Improve.SystemPrompt,
		Temperature:  store.Ollama.Temperature,
		MaxTokens:    store.Ollama.MaxTokens,
	}, func(frag types.Fragment) {
		fmt.Print(frag.Text)
	})
	if err != nil {
		return fmt.Errorf("streaming generation failed: %w", err)
	}
	fmt.Println()
	return nil
}

func readDocument(args []string) (string, error) {
	if len(args) == 1 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", args[0], err)
		}
		return strings.TrimSuffix(string(data), "\n"), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return strings.TrimSuffix(string(data), "\n"), nil
}

// selectRegion applies --start/--end to the buffer, defaulting to the whole
// document.
func selectRegion(buf *editor.TextBuffer, text, startSpec, endSpec string) error {
	start := editor.Pos{}
	end := editor.Advance(editor.Pos{}, text)
	if startSpec != "" {
		p, err := parsePos(startSpec)
		if err != nil {
			return fmt.Errorf("invalid --start: %w", err)
		}
		start = p
	}
	if endSpec != "" {
		p, err := parsePos(endSpec)
		if err != nil {
			return fmt.Errorf("invalid --end: %w", err)
		}
		end = p
	}
	buf.Select(start, end)
	return nil
}

func parsePos(spec string) (editor.Pos, error) {
	lineStr, colStr, ok := strings.Cut(spec, ":")
	if !ok {
		return editor.Pos{}, fmt.Errorf("want LINE:COL, got %q", spec)
	}
	line, err := strconv.Atoi(lineStr)
	if err != nil {
		return editor.Pos{}, fmt.Errorf("bad line number %q", lineStr)
	}
	col, err := strconv.Atoi(colStr)
	if err != nil {
		return editor.Pos{}, fmt.Errorf("bad column number %q", colStr)
	}
	if line < 1 || col < 1 {
		return editor.Pos{}, fmt.Errorf("positions are 1-based, got %q", spec)
	}
	return editor.Pos{Line: line - 1, Col: col - 1}, nil
}
