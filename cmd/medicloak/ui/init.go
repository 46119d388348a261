// Package ui provides terminal output for the medicloak CLI.
package ui

import (
	"io"
	"os"

	"github.com/fatih/color"
)

var (
	stdout      io.Writer = os.Stdout
	stderr      io.Writer = os.Stderr
	verboseFlag bool
)

// InitUI initializes the UI with color and verbose settings.
func InitUI(noColor, verbose bool) {
	verboseFlag = verbose

	if noColor {
		color.NoColor = true
	}
}

// SetOutput redirects UI output, mainly for tests.
func SetOutput(out, errOut io.Writer) {
	stdout = out
	stderr = errOut
}

// Verbose reports whether verbose output was requested.
func Verbose() bool {
	return verboseFlag
}
