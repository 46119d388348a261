package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var buildVersion = "dev"

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	buildVersion = v
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "medicloak %s\n", buildVersion)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
