package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	require.Equal(t, "./data", cfg.Storage.BaseDir)
	require.Equal(t, 30*time.Second, cfg.GetDownloadTimeout())
	require.False(t, cfg.Storage.WatchTampering)
	require.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quantmind.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
storage:
  base_dir: /var/lib/quantmind
  download_timeout: 2m
  watch_tampering: true
  process_workers: 4
logging:
  level: debug
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/var/lib/quantmind", cfg.Storage.BaseDir)
	require.Equal(t, 2*time.Minute, cfg.GetDownloadTimeout())
	require.True(t, cfg.Storage.WatchTampering)
	require.Equal(t, 4, cfg.Storage.ProcessWorkers)
	require.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage: ["), 0644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("QUANTMIND_STORAGE_DIR", "/tmp/qm-data")
	t.Setenv("QUANTMIND_DOWNLOAD_TIMEOUT", "90s")
	t.Setenv("QUANTMIND_LOG_LEVEL", "warn")
	t.Setenv("QUANTMIND_PROCESS_WORKERS", "8")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	require.Equal(t, "/tmp/qm-data", cfg.Storage.BaseDir)
	require.Equal(t, 90*time.Second, cfg.GetDownloadTimeout())
	require.Equal(t, "warn", cfg.Logging.Level)
	require.Equal(t, 8, cfg.Storage.ProcessWorkers)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "quantmind.yaml")

	cfg := DefaultConfig()
	cfg.Storage.BaseDir = "/data/qm"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.Storage, loaded.Storage)
}

func TestGetDownloadTimeoutFallback(t *testing.T) {
	cfg := DefaultConfig()
	for _, raw := range []string{"", "garbage", "-5s", "0s"} {
		cfg.Storage.DownloadTimeout = raw
		require.Equal(t, 30*time.Second, cfg.GetDownloadTimeout(), "raw=%q", raw)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(c *Config) {}, true},
		{"empty base dir", func(c *Config) { c.Storage.BaseDir = "" }, false},
		{"bad timeout", func(c *Config) { c.Storage.DownloadTimeout = "soon" }, false},
		{"negative workers", func(c *Config) { c.Storage.ProcessWorkers = -1 }, false},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, false},
		{"warning alias", func(c *Config) { c.Logging.Level = "warning" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
			}
		})
	}
}

func TestNewLayoutCreatesDirs(t *testing.T) {
	base := filepath.Join(t.TempDir(), "store")

	l, err := NewLayout(base)
	require.NoError(t, err)
	require.True(t, filepath.IsAbs(l.BaseDir))

	for _, dir := range []string{l.RawFilesDir(), l.KnowledgesDir(), l.EmbeddingsDir(), l.ExtraDir()} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		require.True(t, info.IsDir())
	}

	// Idempotent on restart.
	_, err = NewLayout(base)
	require.NoError(t, err)
}

func TestIndexPath(t *testing.T) {
	l := &Layout{BaseDir: "/data"}
	require.Equal(t, filepath.Join("/data", "extra", "raw_files_index.json"), l.IndexPath(RawFilesDirName))
	require.Equal(t, filepath.Join("/data", "extra", "knowledges_index.json"), l.IndexPath(KnowledgesDirName))
}
