package commands

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/vasudevanstar/MediCloak---AI-Privacy-Protector/cmd/medicloak/ui"
	"github.com/vasudevanstar/MediCloak---AI-Privacy-Protector/internal/config"
	"github.com/vasudevanstar/MediCloak---AI-Privacy-Protector/internal/observability"
)

var (
	cfgFile string
	verbose bool
	noColor bool
	timeout time.Duration

	cancelRun context.CancelFunc = func() {}

	cfg    *config.Config
	logger *observability.Logger
)

var rootCmd = &cobra.Command{
	Use:   "medicloak",
	Short: "MediCloak - extract text from medical documents and redact PII",
	Long: `MediCloak extracts text from scanned images, PDFs and plain text files
using OCR, then removes personally identifying information with an AI model
while keeping diagnoses, medications, lab results and treatment plans intact.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		ui.InitUI(noColor, verbose)

		loaded, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		cfg = loaded

		level := cfg.Observability.LogLevel
		if verbose {
			level = "debug"
		} else if cmd.Name() != "serve" {
			// keep progress output readable
			level = "warn"
		}
		logger = observability.NewLogger(observability.LogConfig{
			Level:       level,
			Format:      cfg.Observability.LogFormat,
			ServiceName: "medicloak",
		})

		if cmd.Name() != "serve" {
			cancelRun = applyTimeout(cmd, timeout)
		}
		return nil
	},
}

// applyTimeout bounds the command's context by d. A zero d leaves it
// unbounded.
func applyTimeout(cmd *cobra.Command, d time.Duration) context.CancelFunc {
	if d <= 0 {
		return func() {}
	}
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, d)
	cmd.SetContext(ctx)
	return cancel
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "abort the operation after this long (e.g. 90s, 5m); 0 waits indefinitely")
}

// Execute runs the root command.
func Execute() error {
	defer func() { cancelRun() }()
	return rootCmd.Execute()
}
