package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vasudevanstar/MediCloak---AI-Privacy-Protector/cmd/medicloak/ui"
	"github.com/vasudevanstar/MediCloak---AI-Privacy-Protector/internal/domain"
)

var redactOutputPath string

var redactCmd = &cobra.Command{
	Use:   "redact [file]",
	Short: "Redact PII from text",
	Long:  "Redact PII from a text file, or from stdin when no file (or -) is given.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRedact,
}

func init() {
	redactCmd.Flags().StringVarP(&redactOutputPath, "output", "o", "", "output file (default stdout)")
	rootCmd.AddCommand(redactCmd)
}

func runRedact(cmd *cobra.Command, args []string) error {
	path := ""
	if len(args) == 1 {
		path = args[0]
	}
	data, _, err := readInput(path, cmd.InOrStdin())
	if err != nil {
		return err
	}

	client, err := newClient()
	if err != nil {
		return err
	}
	defer client.Close()

	spinner := ui.NewSpinner(domain.StatusRedacting)
	spinner.Start()
	redacted, err := client.Redact(cmd.Context(), string(data))
	spinner.Stop()
	if err != nil {
		return fmt.Errorf("redaction failed: %w", err)
	}

	if ui.Verbose() {
		ui.Info("%d spans redacted", ui.CountMarkers(redacted, domain.RedactionMarker))
	}
	return writeOutput(redactOutputPath, redacted)
}
