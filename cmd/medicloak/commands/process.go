package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vasudevanstar/MediCloak---AI-Privacy-Protector/cmd/medicloak/ui"
	"github.com/vasudevanstar/MediCloak---AI-Privacy-Protector/internal/domain"
	"github.com/vasudevanstar/MediCloak---AI-Privacy-Protector/pkg/pipeline"
)

var (
	processOutputPath string
	processMIME       string
	processStdout     bool
)

var processCmd = &cobra.Command{
	Use:   "process <file>",
	Short: "Extract text from a document and redact PII",
	Long: `Extract text from a PDF, JPG, PNG or TXT file and redact PII from it.
The redacted copy is saved as redacted_<name>.txt next to the input unless
--output or --stdout is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runProcess,
}

func init() {
	processCmd.Flags().StringVarP(&processOutputPath, "output", "o", "", "output file")
	processCmd.Flags().StringVar(&processMIME, "mime", "", "declared MIME type (default detect)")
	processCmd.Flags().BoolVar(&processStdout, "stdout", false, "write the redacted text to stdout")
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
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
		text, runErr = client.ExtractFile(ctx, name, processMIME, data, onProgress)
		return runErr
	})
	if err != nil {
		describeError(err)
		return fmt.Errorf("extraction failed: %w", err)
	}

	spinner := ui.NewSpinner(domain.StatusRedacting)
	spinner.Start()
	redacted, err := client.Redact(cmd.Context(), text)
	spinner.Stop()
	if err != nil {
		return fmt.Errorf("redaction failed: %w", err)
	}

	if ui.Verbose() {
		ui.Table([]string{"Metric", "Value"}, [][]string{
			{"File", name},
			{"Redacted spans", fmt.Sprintf("%d", ui.CountMarkers(redacted, domain.RedactionMarker))},
			{"Duration", ui.FormatDuration(time.Since(start))},
		})
	}

	out := processOutputPath
	switch {
	case processStdout:
		out = ""
	case out == "" && args[0] == "-":
		out = pipeline.OutputName("")
	case out == "":
		out = defaultOutputPath(args[0])
	}
	return writeOutput(out, redacted)
}
