package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vasudevanstar/MediCloak---AI-Privacy-Protector/cmd/medicloak/ui"
	"github.com/vasudevanstar/MediCloak---AI-Privacy-Protector/internal/domain"
)

var (
	extractOutputPath string
	extractMIME       string
)

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Extract text from a PDF, image or text file",
	Long:  "Extract text from a PDF, JPG, PNG or TXT file. Scanned pages are recognized with OCR.",
	Args:  cobra.ExactArgs(1),
	RunE:  runExtract,
}

func init() {
	extractCmd.Flags().StringVarP(&extractOutputPath, "output", "o", "", "output file (default stdout)")
	extractCmd.Flags().StringVar(&extractMIME, "mime", "", "declared MIME type (default detect)")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	data, name, err := readInput(args[0], cmd.InOrStdin())
	if err != nil {
		return err
	}

	client, err := newClient()
	if err != nil {
		return err
	}
	defer client.Close()

	start := time.Now()
	var text string
	err = withProgress(cmd.Context(), func(ctx context.Context, onProgress domain.ProgressFunc) error {
		var runErr error
		text, runErr = client.ExtractFile(ctx, name, extractMIME, data, onProgress)
		return runErr
	})
	if err != nil {
		describeError(err)
		return fmt.Errorf("extraction failed: %w", err)
	}

	if ui.Verbose() {
		ui.Table([]string{"Metric", "Value"}, [][]string{
			{"File", name},
			{"Characters", fmt.Sprintf("%d", len([]rune(text)))},
			{"Duration", ui.FormatDuration(time.Since(start))},
		})
	}

	return writeOutput(extractOutputPath, text)
}
