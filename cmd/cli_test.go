package cmd

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tomlreport "github.com/bnema/shipscan/internal/adapters/report/toml"
	"github.com/bnema/shipscan/internal/domain"
)

func TestVersionCommand(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), nil, "version")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", stdout)
}

func TestReceiveDemoFullBatch(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, writeConfigFixture(home))

	input := strings.NewReader("ITEM:BOX-0006\nITEM:BOX-0007\nITEM:BOX-0008\n")
	stdout, _, err := executeCLI(t, home, input,
		"receive", "--demo",
		"--actor", "tester",
		"--shipment", "SHIPMENT:DEMO-2",
	)
	require.NoError(t, err)

	assert.Contains(t, stdout, "Shipment DEMO-2")
	assert.Contains(t, stdout, "Wireless Earbuds, from Hong Kong, batch B-442")
	assert.Contains(t, stdout, "accepted BOX-0006")
	assert.Contains(t, stdout, "accepted BOX-0008")
	assert.Contains(t, stdout, "3/3")
	assert.Contains(t, stdout, "Batch complete.")
	assert.Contains(t, stdout, "receipt report written to")

	report, err := tomlreport.Read(filepath.Join(home, ".shipscan", "reports", "receipt-DEMO-2.toml"))
	require.NoError(t, err)
	assert.Equal(t, domain.StateCompleted, report.State)
	assert.Len(t, report.Records, 3)
	assert.Equal(t, 100, report.Progress.Percentage)
}

func TestReceiveShipmentCodeFromInput(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, writeConfigFixture(home))

	input := strings.NewReader("SHIPMENT:DEMO-2\nBOX-0006\nBOX-0007\nBOX-0008\n")
	stdout, _, err := executeCLI(t, home, input, "receive", "--demo", "--no-report")
	require.NoError(t, err)

	assert.Contains(t, stdout, "Shipment DEMO-2")
	assert.Contains(t, stdout, "Batch complete.")
}

func TestReceiveDuplicateItemIsNotCountedAgain(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, writeConfigFixture(home))

	input := strings.NewReader("ITEM:BOX-0006\nITEM:BOX-0007\nITEM:BOX-0006\nITEM:BOX-0008\n")
	stdout, _, err := executeCLI(t, home, input,
		"receive", "--demo",
		"--shipment", "SHIPMENT:DEMO-2",
		"--no-report",
	)
	require.NoError(t, err)

	assert.Contains(t, stdout, "already scanned, not counted again")
	assert.Contains(t, stdout, "3/3")
	assert.Contains(t, stdout, "Batch complete.")
}

func TestReceiveRejectsItemNotInShipment(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, writeConfigFixture(home))

	input := strings.NewReader("ITEM:BOX-9999\n")
	stdout, _, err := executeCLI(t, home, input,
		"receive", "--demo",
		"--shipment", "SHIPMENT:DEMO-2",
	)
	require.NoError(t, err)

	assert.Contains(t, stdout, "rejected: NOT_IN_SHIPMENT")
	assert.NotContains(t, stdout, "receipt report written")
}

func TestReceiveExceptionPath(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, writeConfigFixture(home))

	input := strings.NewReader("ITEM:BOX-0001\nITEM:BOX-0002\n!exception 2 crates damaged\n")
	stdout, _, err := executeCLI(t, home, input,
		"receive", "--demo",
		"--shipment", "SHIPMENT:DEMO-1",
	)
	require.NoError(t, err)

	assert.Contains(t, stdout, "exception raised: 2 crates damaged")
	assert.Contains(t, stdout, "receipt report written to")

	report, err := tomlreport.Read(filepath.Join(home, ".shipscan", "reports", "receipt-DEMO-1.toml"))
	require.NoError(t, err)
	assert.Equal(t, domain.StateException, report.State)
	require.NotNil(t, report.Exception)
	assert.Equal(t, "2 crates damaged", report.Exception.Message)
	assert.Equal(t, 3, report.Exception.MissingCount)
}

func TestReceiveUnknownShipmentFails(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, writeConfigFixture(home))

	_, _, err := executeCLI(t, home, strings.NewReader(""),
		"receive", "--demo",
		"--shipment", "SHIPMENT:NOPE",
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrShipmentNotFound)
}

func TestReportCommandShowsWrittenReceipt(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, writeConfigFixture(home))

	input := strings.NewReader("ITEM:BOX-0006\nITEM:BOX-0007\nITEM:BOX-0008\n")
	_, _, err := executeCLI(t, home, input,
		"receive", "--demo",
		"--shipment", "SHIPMENT:DEMO-2",
	)
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, home, nil, "report", "DEMO-2")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Shipment DEMO-2")
	assert.Contains(t, stdout, "BOX-0007")
	assert.Contains(t, stdout, "Batch complete.")
}

func TestReportCommandMissingReceipt(t *testing.T) {
	home := t.TempDir()

	_, _, err := executeCLI(t, home, nil, "report", "DEMO-9")
	require.Error(t, err)
}

func executeCLI(t *testing.T, home string, stdin io.Reader, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", home)

	root := newRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	if stdin != nil {
		root.SetIn(stdin)
	}
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func writeConfigFixture(home string) error {
	configDir := filepath.Join(home, ".shipscan")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return err
	}

	// Piped test input arrives faster than any real scanner; the debounce
	// window would swallow every scan after the first.
	config := "[scanner]\ndebounce_ms = -1\n"
	return os.WriteFile(filepath.Join(configDir, "config.toml"), []byte(config), 0o600)
}
