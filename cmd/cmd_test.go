package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/fleetledger/pkg/fixture"
)

const seed = "../pkg/fixture/testdata/seed.yaml"

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		summaryCSV = false
		rootCmd.SetArgs(nil)
	})
	require.NoError(t, rootCmd.Execute(), out.String())
	return out.String()
}

func TestReplayCommand(t *testing.T) {
	out := execute(t, "replay", seed)
	var res fixture.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Len(t, res.Carriers, 2)
	assert.Len(t, res.Rejections, 2)
	assert.Len(t, res.Invoices, 1)
}

func TestSummaryCommand(t *testing.T) {
	out := execute(t, "summary", seed)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "OUTSTANDING")
	assert.Contains(t, out, "Acme Haulage")
	assert.Contains(t, out, "300.05")
}

func TestSummaryInvoicesCSV(t *testing.T) {
	out := execute(t, "summary", "--invoices-csv", seed)
	assert.True(t, strings.HasPrefix(out, "invoice_number"), out)
}

func TestVerifyRequiresAPIKey(t *testing.T) {
	rootCmd.SetArgs([]string{"verify", "--mc", "123"})
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	t.Cleanup(func() { verifyMC = "" })
	assert.Error(t, rootCmd.Execute())
}
