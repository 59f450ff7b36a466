package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"posmigrate/internal/config"
)

func TestApplyFlags(t *testing.T) {
	t.Setenv("METRICS_BACKEND", "")
	t.Setenv("PUSHGATEWAY_URL", "")
	t.Setenv("DD_DOGSTATSD_URL", "")

	cfg := config.Default()
	applyFlags(&cfg, "https://backup.example.com/dump.sql", "out", "", false, "pushgateway", "http://gw:9091", "")
	assert.Equal(t, "http", cfg.Source.Kind)
	assert.Equal(t, "https://backup.example.com/dump.sql", cfg.Source.URL)
	assert.Equal(t, "out", cfg.Output.Dir)
	assert.Equal(t, filepath.Join("out", "skipped.csv"), cfg.Output.Report)
	assert.Equal(t, "pushgateway", cfg.Metrics.Backend)
	assert.Equal(t, "http://gw:9091", cfg.Metrics.PushgatewayURL)
	assert.Empty(t, cfg.Validate())

	cfg = config.Default()
	applyFlags(&cfg, "dump.sql", "", "r.csv", true, "", "", "")
	assert.Equal(t, "file", cfg.Source.Kind)
	assert.Equal(t, "dump.sql", cfg.Source.Path)
	assert.Equal(t, "r.csv", cfg.Output.Report)
	assert.Equal(t, "stream", cfg.Output.Kind)
	assert.Equal(t, "none", cfg.Metrics.Backend)
}

func TestApplyFlags_EnvFallback(t *testing.T) {
	t.Setenv("METRICS_BACKEND", "datadog")
	t.Setenv("PUSHGATEWAY_URL", "")
	t.Setenv("DD_DOGSTATSD_URL", "127.0.0.1:8125")

	cfg := config.Default()
	applyFlags(&cfg, "", "", "", false, "", "", "")
	assert.Equal(t, "datadog", cfg.Metrics.Backend)
	assert.Equal(t, "127.0.0.1:8125", cfg.Metrics.DatadogAddr)
}

const cliDump = "INSERT INTO `client` VALUES\n" +
	"(12, 3, 'Martin', 'Zoe', '', 'Lyon', '69001', '', '', '', '', '', NULL, NULL, 1, 1, 42),\n" +
	"(13, 4, 'Short');\n"

func quietMetrics(t *testing.T) {
	t.Helper()
	t.Setenv("METRICS_BACKEND", "")
	t.Setenv("PUSHGATEWAY_URL", "")
	t.Setenv("DD_DOGSTATSD_URL", "")
}

func TestRun_UnreadableInputLeavesOutputUntouched(t *testing.T) {
	quietMetrics(t)

	out := filepath.Join(t.TempDir(), "out")
	require.NoError(t, os.MkdirAll(out, 0o755))
	report := filepath.Join(out, "skipped.csv")
	previous := "reason,table,key,detail\nshort_tuple,client,13,\n"
	require.NoError(t, os.WriteFile(report, []byte(previous), 0o644))
	batch := filepath.Join(out, "01_clients_batch_001.sql")
	require.NoError(t, os.WriteFile(batch, []byte("SELECT 1;\n"), 0o644))

	missing := filepath.Join(t.TempDir(), "missing.sql")
	assert.Equal(t, 1, run([]string{"-input", missing, "-out", out}, &bytes.Buffer{}))

	got, err := os.ReadFile(report)
	require.NoError(t, err)
	assert.Equal(t, previous, string(got))
	assert.FileExists(t, batch)
	assert.NoFileExists(t, filepath.Join(out, "manifest.json"))
}

func TestRun_UnreadableInputInStreamModeCreatesNothing(t *testing.T) {
	quietMetrics(t)
	cwd := t.TempDir()
	t.Chdir(cwd)

	var stdout bytes.Buffer
	assert.Equal(t, 1, run([]string{"-input", "nope.sql", "-stream"}, &stdout))
	assert.Empty(t, stdout.String())

	entries, err := os.ReadDir(cwd)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRun_WritesBatchesAndReport(t *testing.T) {
	quietMetrics(t)

	dir := t.TempDir()
	input := filepath.Join(dir, "dump.sql")
	require.NoError(t, os.WriteFile(input, []byte(cliDump), 0o644))
	out := filepath.Join(dir, "out")

	require.Equal(t, 0, run([]string{"-input", input, "-out", out}, &bytes.Buffer{}))

	assert.FileExists(t, filepath.Join(out, "01_clients_batch_001.sql"))
	assert.FileExists(t, filepath.Join(out, "manifest.json"))
	report, err := os.ReadFile(filepath.Join(out, "skipped.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(report), "reason,table,key,detail\n")
	assert.Contains(t, string(report), "short_tuple,client,13,")
}

func TestRun_Stream(t *testing.T) {
	quietMetrics(t)

	dir := t.TempDir()
	input := filepath.Join(dir, "dump.sql")
	require.NoError(t, os.WriteFile(input, []byte(cliDump), 0o644))

	var stdout bytes.Buffer
	require.Equal(t, 0, run([]string{"-input", input, "-stream", "-report", filepath.Join(dir, "r.csv")}, &stdout))
	assert.Contains(t, stdout.String(), "-- >>> 01_clients_batch_001.sql (checksum ")
	assert.FileExists(t, filepath.Join(dir, "r.csv"))
}
