package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/vasudevanstar/MediCloak---AI-Privacy-Protector/cmd/medicloak/ui"
	"github.com/vasudevanstar/MediCloak---AI-Privacy-Protector/internal/domain"
	"github.com/vasudevanstar/MediCloak---AI-Privacy-Protector/pkg/pipeline"
)

// newClient builds a pipeline client from the loaded configuration.
func newClient() (*pipeline.Client, error) {
	return pipeline.New(cfg, logger)
}

// readInput reads path, or stdin when path is empty or "-".
func readInput(path string, stdin io.Reader) ([]byte, string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, "", fmt.Errorf("read stdin: %w", err)
		}
		return data, "stdin", nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", path, err)
	}
	return data, filepath.Base(path), nil
}

// writeOutput writes text to path, or to stdout when path is empty.
func writeOutput(path, text string) error {
	if path == "" {
		ui.Text(text)
		return nil
	}
	if err := os.WriteFile(path, []byte(text), 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	ui.Success("Saved to %s", path)
	return nil
}

// defaultOutputPath places the redacted copy next to the input file.
func defaultOutputPath(input string) string {
	return filepath.Join(filepath.Dir(input), pipeline.OutputName(input))
}

// withProgress runs fn with a progress bar attached to its events.
func withProgress(ctx context.Context, fn func(context.Context, domain.ProgressFunc) error) error {
	bar := ui.NewProgressBar(domain.StatusInitializing)
	if err := fn(ctx, bar.Observe); err != nil {
		bar.Clear()
		return err
	}
	bar.Finish()
	return nil
}

// describeError prints the failing stage of a pipeline error.
func describeError(err error) {
	if page, ok := domain.FailedPage(err); ok {
		ui.Error("Page %d failed", page)
	}
}
