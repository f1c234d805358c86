package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mggg/votekit/internal/metrics"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "votekit")
}

func TestRunCommandEndToEnd(t *testing.T) {
	dir := t.TempDir()
	profilePath := filepath.Join(dir, "profile.yaml")
	require.NoError(t, os.WriteFile(profilePath, []byte(`
candidates: [A, B, C]
ballots:
  - ranking: [[A], [B], [C]]
    weight: 300
  - ranking: [[B], [A], [C]]
    weight: 200
  - ranking: [[C], [B], [A]]
    weight: 50
`), 0o600))

	reportPath := filepath.Join(dir, "report.json")
	out, _, err := execute(t, "run",
		"--profile", profilePath,
		"--method", "stv",
		"--seats", "2",
		"--seed", "42",
		"--report", reportPath,
	)
	require.NoError(t, err)
	assert.Contains(t, out, "Winners:")
	assert.FileExists(t, reportPath)

	assert.Contains(t, out, `"report_path":`+strconv.Quote(reportPath))
}

func TestRunCommandMissingProfile(t *testing.T) {
	_, _, err := execute(t, "run", "--profile", filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestGenerateCommand(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "profile.yaml")
	before := testutil.ToFloat64(metrics.BallotsGeneratedTotal.WithLabelValues("impartial-culture"))

	out, _, err := execute(t, "generate",
		"--model", "impartial-culture",
		"--candidates", "A,B,C",
		"--ballots", "50",
		"--seed", "7",
		"--out", outPath,
	)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote")
	assert.FileExists(t, outPath)

	// Ballots requested, not condensed profile lines.
	after := testutil.ToFloat64(metrics.BallotsGeneratedTotal.WithLabelValues("impartial-culture"))
	assert.Equal(t, 50.0, after-before)
}

func TestSiteValidateCommand(t *testing.T) {
	dir := t.TempDir()
	docs := filepath.Join(dir, "docs")
	require.NoError(t, os.MkdirAll(docs, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(docs, "index.md"), []byte("# Home\n"), 0o600))

	configPath := filepath.Join(dir, "mkdocs.yml")
	require.NoError(t, os.WriteFile(configPath, []byte(`
site_name: VoteKit
theme:
  name: material
nav:
  - Home: index.md
`), 0o600))

	out, _, err := execute(t, "site", "validate", configPath, "--docs", docs)
	require.NoError(t, err)
	assert.Contains(t, out, "is valid")
}

func TestSiteValidateRejectsBadConfig(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "mkdocs.yml")
	require.NoError(t, os.WriteFile(configPath, []byte("site_name: x\nthemee: {}\n"), 0o600))

	_, _, err := execute(t, "site", "validate", configPath, "--docs", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "strict config parse error")
}

func TestConfigDump(t *testing.T) {
	chdir(t, t.TempDir())

	out, _, err := execute(t, "config", "dump")
	require.NoError(t, err)
	assert.Contains(t, out, "listen:")
	assert.Contains(t, out, "rate_limit:")
}
