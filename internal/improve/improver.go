// Package improve implements the selection-improvement pipeline: capture
// the selection, show a placeholder while the model generates, then place
// the result back into the buffer, rolling everything back on failure.
package improve

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/matthieukhl/reword/internal/config"
	"github.com/matthieukhl/reword/internal/editor"
	"github.com/matthieukhl/reword/internal/types"
)

var (
	// ErrNoSelection means the user invoked improve with nothing selected.
	ErrNoSelection = errors.New("nothing is selected")
	// ErrBusy means another improve operation is still in flight. A second
	// operation against the same anchor state would be a data race.
	ErrBusy = errors.New("an improve operation is already in progress")
)

// Notifier is the host's transient message surface.
type Notifier interface {
	Notify(message string)
}

// Improver runs improve operations against host buffers.
type Improver struct {
	cfg       *config.Config
	generator types.Generator
	scheduler *Scheduler
	notifier  Notifier
	logger    *zap.Logger
	busy      atomic.Bool
}

func NewImprover(cfg *config.Config, generator types.Generator, notifier Notifier, logger *zap.Logger) *Improver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Improver{
		cfg:       cfg,
		generator: generator,
		scheduler: NewScheduler(),
		notifier:  notifier,
		logger:    logger,
	}
}

// Improve runs the full pipeline on the buffer's current selection. Pacing
// follows the streaming setting and speed profile from the configuration.
func (im *Improver) Improve(ctx context.Context, buf editor.Buffer) error {
	return im.improve(ctx, buf, im.cfg.Improve.Streaming)
}

// ImproveInstant runs the pipeline with pacing disabled regardless of the
// streaming setting. Hosts with no surface for a typewriter effect, such as
// the HTTP adapter, use this variant.
func (im *Improver) ImproveInstant(ctx context.Context, buf editor.Buffer) error {
	return im.improve(ctx, buf, false)
}

func (im *Improver) improve(ctx context.Context, buf editor.Buffer, paced bool) error {
	if !im.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer im.busy.Store(false)

	original, start, end := buf.Selection()
	if strings.TrimSpace(original) == "" {
		im.notifier.Notify("Select some text to improve first")
		return ErrNoSelection
	}

	// The placeholder changes buffer length, so every later mutation works
	// from the captured anchors, never from the live selection.
	placeholderShown := false
	placeholderEnd := end
	if im.cfg.Improve.ShowGenerating {
		buf.ReplaceSelection(im.cfg.Improve.GeneratingText)
		placeholderEnd = editor.Advance(start, im.cfg.Improve.GeneratingText)
		placeholderShown = true
	}

	prompt := renderPrompt(im.cfg.Improve.PromptTemplate, original)
	result, err := im.generator.Generate(ctx, prompt, im.options())
	if err != nil {
		if placeholderShown {
			buf.ReplaceRange(start, placeholderEnd, original)
		}
		im.logger.Warn("generation failed", zap.Error(err))
		im.notifier.Notify("Failed to improve text: " + err.Error())
		return fmt.Errorf("failed to improve selection: %w", err)
	}

	profile := ProfileByName(im.cfg.Improve.SpeedProfile)
	var cursor editor.Pos
	if im.cfg.Improve.ReplaceOriginal {
		// Clear whatever occupies the original anchor, placeholder or
		// original text, then materialize the result there.
		clearEnd := end
		if placeholderShown {
			clearEnd = placeholderEnd
		}
		buf.ReplaceRange(start, clearEnd, "")
		cursor = im.scheduler.Materialize(buf, result, start, paced, profile)
	} else {
		// The original text must be back in place before the insertion
		// point after the selection can mean anything.
		if placeholderShown {
			buf.ReplaceRange(start, placeholderEnd, original)
		}
		lead := "\n\n" + im.cfg.Improve.Prefix
		buf.Insert(end, lead)
		cursor = im.scheduler.Materialize(buf, result, editor.Advance(end, lead), paced, profile)
	}
	buf.SetCursor(cursor)

	im.notifier.Notify("Selection improved")
	return nil
}

func (im *Improver) options() types.GenerationOptions {
	return types.GenerationOptions{
		Model:        im.cfg.Ollama.Model,
		SystemPrompt: im.cfg.Improve.SystemPrompt,
		Temperature:  im.cfg.Ollama.Temperature,
		MaxTokens:    im.cfg.Ollama.MaxTokens,
	}
}

// renderPrompt substitutes the selection into the configured template. A
// template without the token degrades to template plus selection so a
// hand-edited config file still produces a usable prompt.
func renderPrompt(template, selection string) string {
	if strings.Contains(template, config.SelectionToken) {
		return strings.ReplaceAll(template, config.SelectionToken, selection)
	}
	return template + "\n\n" + selection
}
