package commands

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vasudevanstar/MediCloak---AI-Privacy-Protector/cmd/medicloak/ui"
	"github.com/vasudevanstar/MediCloak---AI-Privacy-Protector/internal/domain"
)

func TestReadInput(t *testing.T) {
	data, name, err := readInput("-", strings.NewReader("from stdin"))
	require.NoError(t, err)
	assert.Equal(t, "from stdin", string(data))
	assert.Equal(t, "stdin", name)

	path := filepath.Join(t.TempDir(), "note.txt")
	require.NoError(t, os.WriteFile(path, []byte("from file"), 0o600))
	data, name, err = readInput(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "from file", string(data))
	assert.Equal(t, "note.txt", name)

	_, _, err = readInput(filepath.Join(t.TempDir(), "missing.txt"), nil)
	assert.Error(t, err)
}

func TestWriteOutput(t *testing.T) {
	var out, errOut bytes.Buffer
	ui.SetOutput(&out, &errOut)
	defer ui.SetOutput(os.Stdout, os.Stderr)

	require.NoError(t, writeOutput("", "Name: [REDACTED]"))
	assert.Equal(t, "Name: [REDACTED]\n", out.String())

	path := filepath.Join(t.TempDir(), "out.txt")
	require.NoError(t, writeOutput(path, "x"))
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "x", string(got))
}

func TestDefaultOutputPath(t *testing.T) {
	assert.Equal(t, filepath.Join("/data/scans", "redacted_report.txt"), defaultOutputPath("/data/scans/report.pdf"))
}

func TestWithProgress(t *testing.T) {
	var errOut bytes.Buffer
	ui.SetOutput(&bytes.Buffer{}, &errOut)
	defer ui.SetOutput(os.Stdout, os.Stderr)

	err := withProgress(context.Background(), func(_ context.Context, onProgress domain.ProgressFunc) error {
		onProgress(domain.ProgressEvent{Status: "Recognizing text on page 1 of 2", Fraction: 0.25})
		onProgress(domain.ProgressEvent{Status: domain.StatusComplete, Fraction: 1})
		return nil
	})
	require.NoError(t, err)
	assert.Contains(t, errOut.String(), domain.StatusComplete)

	boom := errors.New("boom")
	err = withProgress(context.Background(), func(context.Context, domain.ProgressFunc) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestVersionCommand(t *testing.T) {
	SetVersion("1.2.3")
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "medicloak 1.2.3\n", out.String())
}

func TestApplyTimeout(t *testing.T) {
	cmd := &cobra.Command{Use: "extract"}
	cancel := applyTimeout(cmd, 0)
	cancel()
	assert.Nil(t, cmd.Context())

	cmd.SetContext(context.Background())
	cancel = applyTimeout(cmd, 20*time.Millisecond)
	defer cancel()

	deadline, ok := cmd.Context().Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(20*time.Millisecond), deadline, time.Second)

	select {
	case <-cmd.Context().Done():
		assert.ErrorIs(t, cmd.Context().Err(), context.DeadlineExceeded)
	case <-time.After(2 * time.Second):
		t.Fatal("context was not cancelled")
	}
}

func TestTimeoutFlagRegistered(t *testing.T) {
	f := rootCmd.PersistentFlags().Lookup("timeout")
	require.NotNil(t, f)
	assert.Equal(t, "0s", f.DefValue)
}
