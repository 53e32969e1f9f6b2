package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultDialect, cfg.Dialect)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.False(t, cfg.Verbose)
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sqllineage.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dialect: postgres\nverbose: true\n"), 0o644))

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Dialect)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, path, GetConfigFileUsed())
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sqllineage.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dialect: postgres\n"), 0o644))
	t.Setenv("SQLLINEAGE_DIALECT", "snowflake")

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "snowflake", cfg.Dialect)
}

func TestLoadConfig_FlagsWinOverEnv(t *testing.T) {
	t.Setenv("SQLLINEAGE_DIALECT", "snowflake")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("dialect", "", "")
	flags.String("metadata", "", "")
	require.NoError(t, flags.Parse([]string{"--dialect", "duckdb", "--metadata", "schema.yaml"}))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)
	assert.Equal(t, "duckdb", cfg.Dialect)
	// --metadata maps to the metadata_file key.
	assert.Equal(t, "schema.yaml", cfg.MetadataFile)
}

func TestLoadConfig_UnsetFlagsIgnored(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("dialect", "mysql", "")
	require.NoError(t, flags.Parse(nil))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)
	assert.Equal(t, DefaultDialect, cfg.Dialect, "flag defaults must not override config defaults")
}

func TestSlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, (&Config{LogLevel: "debug"}).SlogLevel())
	assert.Equal(t, slog.LevelInfo, (&Config{LogLevel: "INFO"}).SlogLevel())
	assert.Equal(t, slog.LevelError, (&Config{LogLevel: "error"}).SlogLevel())
	assert.Equal(t, slog.LevelWarn, (&Config{LogLevel: "anything"}).SlogLevel())
}
