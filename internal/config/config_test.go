package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lac1tool/pkg/lac1"
)

func TestDecodeDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)

	s, err := Decode(cfg)
	require.NoError(t, err)
	assert.Equal(t, DefaultBaudRate, s.BaudRate)
	assert.Equal(t, "utf-8", s.Charset)
	assert.Equal(t, lac1.DefaultTiming(), s.Timing)
	assert.Equal(t, lac1.DefaultLimits(), s.Limits)
	assert.Empty(t, s.Port)
}

func TestDecodeFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: /dev/ttyUSB1
baud_rate: 19200
charset: windows-1252
timing:
  settle: 3s
  register_pace: 80ms
limits:
  registers: 64
`), 0644))
	t.Setenv("LAC1_TIMING_MACRO_PACE", "250ms")
	t.Setenv("LAC1_PORT", "COM7")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	s, err := Decode(cfg)
	require.NoError(t, err)

	assert.Equal(t, "COM7", s.Port)
	assert.Equal(t, 19200, s.BaudRate)
	assert.Equal(t, "windows-1252", s.Charset)
	assert.Equal(t, 3*time.Second, s.Timing.Settle)
	assert.Equal(t, 80*time.Millisecond, s.Timing.RegisterPace)
	assert.Equal(t, 250*time.Millisecond, s.Timing.MacroPace)
	assert.Equal(t, lac1.DefaultTiming().ReadTimeout, s.Timing.ReadTimeout)
	assert.Equal(t, 64, s.Limits.Registers)
	assert.Equal(t, 8192, s.Limits.MacroDump)
}

func TestDecodeRejectsBadValues(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)

	cfg.Set(KeyCharset, "klingon")
	_, err = Decode(cfg)
	assert.Error(t, err)

	cfg.Set(KeyCharset, "utf-8")
	cfg.Set(KeyBaudRate, 0)
	_, err = Decode(cfg)
	assert.Error(t, err)
}

func TestWriteConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	cfg.Set(KeyPort, "COM4")
	require.NoError(t, WriteConfig(cfg))

	reread, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "COM4", reread.GetString(KeyPort))
	assert.Equal(t, filepath.Join(filepath.Dir(path), "profiles.json"), ProfilesPath(reread))

	_, err = os.Stat(filepath.Join(filepath.Dir(path), ".config.tmp.yaml"))
	assert.True(t, os.IsNotExist(err))
}

func TestGetConfigPathEnv(t *testing.T) {
	t.Setenv(ConfigPathEnv, "/tmp/lac1.yaml")
	path, err := GetConfigPath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/lac1.yaml", path)
}
