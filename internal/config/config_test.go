package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pinctl/driver"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pinctld.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestDefaultsAreValid(t *testing.T) {
	require.NoError(t, Validate(Defaults()))
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
driver:
  backend: sim
  pins: 8
  setup_rc: 0
strict: true
link:
  mode: frames
  serial:
    device: /dev/ttyAMA0
    baud: 57600
    read_timeout_ms: 50
metrics:
  listen: ":9108"
logger:
  level: debug
  format: json
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, driver.BackendSim, cfg.Driver.Backend)
	assert.Equal(t, 8, cfg.Driver.Pins)
	assert.True(t, cfg.Strict)
	assert.Equal(t, ModeFrames, cfg.Link.Mode)
	assert.Equal(t, "/dev/ttyAMA0", cfg.Link.Serial.Device)
	assert.Equal(t, 57600, cfg.Link.Serial.Baud)
	assert.Equal(t, 50, cfg.Link.Serial.ReadTimeout)
	assert.Equal(t, ":9108", cfg.Metrics.Listen)
	assert.Equal(t, "json", cfg.Logger.Format)
	// untouched keys keep their defaults
	assert.Equal(t, "stderr", cfg.Logger.Output)
}

func TestLoadBadYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "driver: [unterminated"))
	assert.ErrorContains(t, err, "parse config")
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PINCTL_DRIVER", driver.BackendCdev)
	t.Setenv("PINCTL_STRICT", "true")
	t.Setenv("PINCTL_LINK_MODE", ModeFrames)
	t.Setenv("PINCTL_SERIAL_DEVICE", "/dev/ttyUSB0")
	t.Setenv("PINCTL_METRICS_LISTEN", "127.0.0.1:9108")
	t.Setenv("PINCTL_LOGGER_LEVEL", "warn")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, driver.BackendCdev, cfg.Driver.Backend)
	assert.True(t, cfg.Strict)
	assert.Equal(t, ModeFrames, cfg.Link.Mode)
	assert.Equal(t, "/dev/ttyUSB0", cfg.Link.Serial.Device)
	assert.Equal(t, "127.0.0.1:9108", cfg.Metrics.Listen)
	assert.Equal(t, "warn", cfg.Logger.Level)
}

func TestValidateCollectsEverything(t *testing.T) {
	cfg := Defaults()
	cfg.Driver.Backend = "wiringpi"
	cfg.Driver.Pins = -1
	cfg.Link.Mode = "http"
	cfg.Link.Serial.Device = ""
	cfg.Link.Serial.Baud = 0
	cfg.Metrics.Listen = "9108"
	cfg.Logger.Level = "chatty"
	cfg.Logger.Format = "xml"

	err := Validate(cfg)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Len(t, ve.Errors, 8)
	assert.Contains(t, err.Error(), "driver.backend")
	assert.Contains(t, err.Error(), "metrics.listen")
}

func TestValidateStdioNeedsNoBaud(t *testing.T) {
	cfg := Defaults()
	cfg.Link.Serial.Baud = 0
	assert.NoError(t, Validate(cfg))
}
