package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 15*time.Second, cfg.History.Timeout)
	assert.Equal(t, uint64(2), *cfg.History.Retries)
	assert.Equal(t, "value", cfg.History.Dedup)
	assert.Equal(t, "badge_data", cfg.OutputDir)
	assert.Equal(t, "rules.json", cfg.Badge.File)
	assert.Equal(t, filepath.Join("badge_data", "history.json"), cfg.HistoryLocation())
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rulebadge.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
history:
  url: https://example.com/history.json
  timeout: 5s
  retries: 0
output_dir: out
chart:
  language: zh
lists:
  adblock: https://example.com/list.txt
`), 0o644))
	t.Setenv("OUTPUT_DIR", "env-out")
	t.Setenv("TZ_NAME", "Asia/Shanghai")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 5*time.Second, cfg.History.Timeout)
	assert.Equal(t, uint64(0), *cfg.History.Retries)
	assert.Equal(t, "env-out", cfg.OutputDir)
	assert.Equal(t, "https://example.com/history.json", cfg.HistoryLocation())
	assert.Equal(t, "zh", cfg.ChartOptions().LabelLanguage)
	assert.Equal(t, "Asia/Shanghai", cfg.ChartOptions().Location.String())
	assert.Len(t, cfg.Lists, 1)
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rulebadge.yaml")
	require.NoError(t, os.WriteFile(path, []byte("history: [unclosed"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad dedup", func(c *Config) { c.History.Dedup = "weekly" }},
		{"bad timezone", func(c *Config) { c.Timezone = "Mars/Olympus" }},
		{"bad color", func(c *Config) { c.Chart.LineColor = "red" }},
		{"half telegram", func(c *Config) { c.Telegram.BotToken = "token" }},
		{"list name with path", func(c *Config) { c.Lists = map[string]string{"../x": "http://a"} }},
		{"list name collides", func(c *Config) { c.Lists = map[string]string{"history": "http://a"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
			require.NoError(t, err)
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
