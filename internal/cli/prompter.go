package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"github.com/equipeadalove/aduana/internal/common"
	"github.com/equipeadalove/aduana/internal/model"
)

// Prompter asks questions on a line-oriented terminal and reports progress
// of multi-step commands.
type Prompter struct {
	in          io.Reader
	writer      io.Writer
	reader      *LineReader
	progressBar *progressbar.ProgressBar
	mu          sync.Mutex
}

// NewPrompter creates a prompter over reader and writer, defaulting to the
// process's stdin and stdout.
func NewPrompter(reader io.Reader, writer io.Writer) *Prompter {
	if reader == nil {
		reader = os.Stdin
	}
	if writer == nil {
		writer = os.Stdout
	}
	return &Prompter{
		in:     reader,
		writer: writer,
		reader: NewLineReader(reader),
	}
}

// Ask prompts for a value. An empty answer returns def.
func (p *Prompter) Ask(ctx context.Context, label, def string) (string, error) {
	prompt := label
	if def != "" {
		prompt = fmt.Sprintf("%s [%s]", label, def)
	}
	if _, err := fmt.Fprint(p.writer, FormatPrompt(prompt)); err != nil {
		return "", fmt.Errorf("failed to write prompt: %w", err)
	}

	line, err := p.reader.ReadLine(ctx)
	if err != nil {
		return "", err
	}
	if line == "" {
		return def, nil
	}
	return line, nil
}

// AskRequired prompts for a value that may not be empty.
func (p *Prompter) AskRequired(ctx context.Context, label string) (string, error) {
	value, err := p.Ask(ctx, label, "")
	if err != nil {
		return "", err
	}
	if value == "" {
		return "", common.Invalid(label + " is required.")
	}
	return value, nil
}

// AskSecret prompts for a password without echo when reading from a
// terminal.
func (p *Prompter) AskSecret(ctx context.Context, label string) (string, error) {
	f, ok := p.in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return p.AskRequired(ctx, label)
	}

	if _, err := fmt.Fprint(p.writer, FormatPrompt(label)); err != nil {
		return "", fmt.Errorf("failed to write prompt: %w", err)
	}
	secret, err := term.ReadPassword(int(f.Fd()))
	_, _ = fmt.Fprintln(p.writer)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
	}
	if len(secret) == 0 {
		return "", common.Invalid(label + " is required.")
	}
	return string(secret), nil
}

// Confirm asks a yes/no question.
func (p *Prompter) Confirm(ctx context.Context, question string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	for {
		answer, err := p.Ask(ctx, fmt.Sprintf("%s (%s)", question, hint), "")
		if err != nil {
			return false, err
		}
		switch strings.ToLower(answer) {
		case "":
			return def, nil
		case "y", "yes", "s", "sim":
			return true, nil
		case "n", "no", "nao", "não":
			return false, nil
		}
		if _, err := fmt.Fprintln(p.writer, FormatWarning("Please answer y or n.")); err != nil {
			return false, fmt.Errorf("failed to write hint: %w", err)
		}
	}
}

// ReviewExtracted walks every extracted item and lets the user correct
// each field. Changed values are passed to apply; Enter keeps a value.
func (p *Prompter) ReviewExtracted(ctx context.Context, items []model.ExtractedItem, apply func(int, model.ExtractedField, string) error) error {
	for i, item := range items {
		title := fmt.Sprintf("Item %d of %d", i+1, len(items))
		if _, err := fmt.Fprintln(p.writer, RenderBox(title, item.PartNumber+"\n"+SubtleStyle.Render(item.RawDescription))); err != nil {
			return fmt.Errorf("failed to write item: %w", err)
		}

		for _, field := range model.ExtractedFields {
			current := item.Get(field)
			value, err := p.Ask(ctx, field.Label(), current)
			if err != nil {
				return err
			}
			if value == current {
				continue
			}
			if err := apply(i, field, value); err != nil {
				return fmt.Errorf("failed to update item %d: %w", i+1, err)
			}
		}
	}
	return nil
}

// ReviewProcessed walks every processed item and lets the user fill or
// correct the editable fields. The part number is shown but not asked.
func (p *Prompter) ReviewProcessed(ctx context.Context, items []model.ProcessedItem, apply func(int, model.ProcessedField, string) error) error {
	for i, item := range items {
		title := fmt.Sprintf("Item %d of %d: %s", i+1, len(items), item.PartNumber)
		content := item.Description
		if notice := item.ManufacturerNotice(); notice != "" {
			content = strings.TrimSpace(content + "\n" + FormatWarning(notice))
		}
		if _, err := fmt.Fprintln(p.writer, RenderBox(title, content)); err != nil {
			return fmt.Errorf("failed to write item: %w", err)
		}

		for _, field := range model.EditableProcessedFields {
			current := item.Get(field)
			value, err := p.Ask(ctx, field.Label(), current)
			if err != nil {
				return err
			}
			if value == current {
				continue
			}
			if err := apply(i, field, value); err != nil {
				return fmt.Errorf("failed to update item %d: %w", i+1, err)
			}
		}
	}
	return nil
}

// StartProgress shows a progress bar of total steps.
func (p *Prompter) StartProgress(total int, description string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.progressBar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(p.writer),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetDescription("[cyan][bold]"+description+"[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(p.writer); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
}

// Step advances the progress bar and updates its description.
func (p *Prompter) Step(description string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.progressBar == nil {
		return
	}
	p.progressBar.Describe("[cyan][bold]" + description + "[reset]")
	if err := p.progressBar.Add(1); err != nil {
		slog.Warn("Failed to update progress bar", "error", err)
	}
}

// FinishProgress completes and removes the progress bar.
func (p *Prompter) FinishProgress() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.progressBar == nil {
		return
	}
	if err := p.progressBar.Finish(); err != nil {
		slog.Warn("Failed to finish progress bar", "error", err)
	}
	p.progressBar = nil
}

// Writer returns the output writer.
func (p *Prompter) Writer() io.Writer {
	return p.writer
}
