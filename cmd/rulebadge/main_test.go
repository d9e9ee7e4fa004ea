package main

import (
	"bytes"
	"context"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RuleBadge/internal/config"
	"RuleBadge/internal/model"
	"RuleBadge/internal/recorder"
	"RuleBadge/internal/runner"
)

func TestRulesPath(t *testing.T) {
	assert.Equal(t, defaultRulesPath, rulesPath(nil))
	assert.Equal(t, "x.json", rulesPath([]string{"x.json"}))
}

func TestRunCommand(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out")
	cfgFile := filepath.Join(dir, "rulebadge.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("output_dir: "+out+"\n"), 0o644))
	rules := filepath.Join(dir, "rules.json")
	require.NoError(t, os.WriteFile(rules, []byte(`{"rules": [{"domain": "a.com"}]}`), 0o644))
	t.Setenv("OUTPUT_DIR", "")
	t.Setenv("HTTPS_PROXY", "")

	rootCmd.SetArgs([]string{"run", "--config", cfgFile, rules})
	require.NoError(t, rootCmd.Execute())
	assert.FileExists(t, filepath.Join(out, "rules.json"))
	assert.FileExists(t, filepath.Join(out, "history.json"))

	rootCmd.SetArgs([]string{"run", "--config", cfgFile, filepath.Join(dir, "missing.json")})
	assert.Error(t, rootCmd.Execute())
}

func TestOpenRecorder_LogsLastRun(t *testing.T) {
	var logs bytes.Buffer
	log.SetOutput(&logs)
	defer log.SetOutput(os.Stderr)

	_, isNoop := openRecorder("").(*recorder.NoopRecorder)
	assert.True(t, isNoop)

	path := filepath.Join(t.TempDir(), "runs.db")
	rec := openRecorder(path)
	require.IsType(t, &recorder.SQLiteRecorder{}, rec)
	assert.Contains(t, logs.String(), "run ledger is empty")
	require.NoError(t, rec.RecordRun(&model.RunResult{RunAt: time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC), Count: 9}))
	require.NoError(t, rec.Close())

	logs.Reset()
	rec = openRecorder(path)
	defer rec.Close()
	assert.Contains(t, logs.String(), "last recorded run: 9 rules")
}

// cancelOnRecord cancels the serve context while the startup pass is running.
type cancelOnRecord struct {
	cancel context.CancelFunc
	runs   int
}

func (c *cancelOnRecord) RecordRun(*model.RunResult) error {
	c.runs++
	c.cancel()
	return nil
}

func (c *cancelOnRecord) Close() error { return nil }

func TestServe_StopsWhenInterruptedDuringStartupPass(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HTTPS_PROXY", "")
	cfg, err := config.Load(filepath.Join(dir, "absent.yaml"))
	require.NoError(t, err)
	cfg.OutputDir = filepath.Join(dir, "out")
	cfg.Proxy = ""
	require.NoError(t, cfg.Validate())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rec := &cancelOnRecord{cancel: cancel}
	r, err := runner.New(cfg, rec, nil)
	require.NoError(t, err)

	rules := filepath.Join(dir, "rules.json")
	require.NoError(t, os.WriteFile(rules, []byte(`{"rules": [{"domain": "a.com"}]}`), 0o644))

	done := make(chan error, 1)
	go func() { done <- serve(ctx, "0 0 0 1 1 *", r, rules, true) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not return after cancellation")
	}
	assert.Equal(t, 1, rec.runs)
	assert.FileExists(t, filepath.Join(cfg.OutputDir, "rules.json"))
}
