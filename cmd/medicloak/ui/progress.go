package ui

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"github.com/vasudevanstar/MediCloak---AI-Privacy-Protector/internal/domain"
)

// progressMax is the bar resolution; fractions are mapped onto 0..progressMax.
const progressMax = 1000

// ProgressBar renders pipeline progress events.
type ProgressBar struct {
	mu   sync.Mutex
	bar  *progressbar.ProgressBar
	last int
}

// NewProgressBar creates a progress bar for one extraction run.
func NewProgressBar(description string) *ProgressBar {
	bar := progressbar.NewOptions(
		progressMax,
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionSetWriter(stderr),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(stderr, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)

	return &ProgressBar{bar: bar}
}

// Observe is a domain.ProgressFunc that moves the bar and shows the status.
func (p *ProgressBar) Observe(evt domain.ProgressEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.bar.Describe(evt.Status)
	pos := toSteps(evt.Fraction)
	if pos < p.last {
		return
	}
	p.last = pos
	_ = p.bar.Set(pos)
}

// Finish completes the progress bar.
func (p *ProgressBar) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	_ = p.bar.Finish()
}

// Clear removes the bar from the terminal without completing it.
func (p *ProgressBar) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	_ = p.bar.Clear()
	fmt.Fprint(stderr, "\n")
}

func toSteps(fraction float64) int {
	if math.IsNaN(fraction) || fraction < 0 {
		return 0
	}
	if fraction > 1 {
		fraction = 1
	}
	return int(math.Round(fraction * progressMax))
}

// Spinner wraps a spinner instance for indeterminate progress display.
type Spinner struct {
	spinner *spinner.Spinner
}

// NewSpinner creates a new spinner with the given message.
func NewSpinner(message string) *Spinner {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message
	s.Writer = stderr
	return &Spinner{spinner: s}
}

func (s *Spinner) Start() {
	s.spinner.Start()
}

func (s *Spinner) Stop() {
	s.spinner.Stop()
}

// Error displays an error message to stderr.
func Error(format string, args ...interface{}) {
	fmt.Fprintf(stderr, "%s %s\n", color.RedString("✗"), fmt.Sprintf(format, args...))
}

// Success displays a success message.
func Success(format string, args ...interface{}) {
	fmt.Fprintf(stderr, "%s %s\n", color.GreenString("✓"), fmt.Sprintf(format, args...))
}

// Warning displays a warning message.
func Warning(format string, args ...interface{}) {
	fmt.Fprintf(stderr, "%s %s\n", color.YellowString("⚠"), fmt.Sprintf(format, args...))
}

// Info displays an informational message.
func Info(format string, args ...interface{}) {
	fmt.Fprintf(stderr, "%s %s\n", color.CyanString("ℹ"), fmt.Sprintf(format, args...))
}

// Section displays a section header.
func Section(title string) {
	bold := color.New(color.Bold)
	bold.Fprintf(stderr, "\n%s\n", title)
	fmt.Fprintf(stderr, "%s\n\n", underline(len(title)))
}

func underline(length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = '='
	}
	return string(b)
}
