package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, DefaultServerExecutable, cfg.Server.Executable)
	assert.Equal(t, DefaultGUIExecutable, cfg.GUI.Executable)
	assert.Equal(t, 5*time.Second, cfg.GracefulTimeout())
	assert.Equal(t, time.Millisecond, cfg.PollInterval())
	assert.Empty(t, cfg.Health.Addr)
	assert.Empty(t, cfg.History.Path)
	assert.NoError(t, cfg.Validate())
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "simlaunch.yaml")
	content := `
server:
  executable: /opt/sim/bin/sim-server
shutdown:
  graceful_timeout_sec: 2.5
health:
  addr: 127.0.0.1:9180
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/opt/sim/bin/sim-server", cfg.Server.Executable)
	// Unset fields keep their defaults.
	assert.Equal(t, DefaultGUIExecutable, cfg.GUI.Executable)
	assert.Equal(t, 2500*time.Millisecond, cfg.GracefulTimeout())
	assert.Equal(t, time.Millisecond, cfg.PollInterval())
	assert.Equal(t, "127.0.0.1:9180", cfg.Health.Addr)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("shutdown:\n  graceful_timeout_sec: -1\n"), 0644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "graceful_timeout_sec")
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.GUI.Executable = ""
	assert.ErrorContains(t, cfg.Validate(), "gui executable")

	cfg = Default()
	cfg.Shutdown.PollIntervalMS = 0
	assert.ErrorContains(t, cfg.Validate(), "poll_interval_ms")
}
