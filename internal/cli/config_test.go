package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/renoma/pkg/errors"
)

func TestLoadConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := loadConfig(filepath.Join(dir, ".env"), dir)
	require.NoError(t, err)

	assert.Equal(t, defaultConfig(), cfg)
	assert.NoError(t, cfg.validate())
}

func TestLoadConfigPrecedence(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	write(t, envFile, "RENOMA_LIMIT=10\nRENOMA_JOBS=2\nRENOMA_FORMAT=json\n")
	t.Setenv("RENOMA_JOBS", "4")
	t.Setenv("RENOMA_IGNORE", "fsevents, esbuild,")
	write(t, filepath.Join(dir, "renoma.toml"), "format = \"sarif\"\nerror_limit = 3\n")

	cfg, err := loadConfig(envFile, dir)
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Limit, ".env fills unset variables")
	assert.Equal(t, 4, cfg.Jobs, "process env wins over .env")
	assert.Equal(t, []string{"fsevents", "esbuild"}, cfg.Ignore)
	assert.Equal(t, "sarif", cfg.Format, "config file wins over env")
	assert.Equal(t, 3, cfg.ErrorLimit)
	assert.Equal(t, filepath.Join(dir, "renoma.toml"), cfg.File)
}

func TestLoadConfigDotfile(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, ".renoma.toml"), "rules = [\"/unused/\"]\nextensions = [\".mjs\"]\n")

	cfg, err := loadConfig(filepath.Join(dir, ".env"), dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"/unused/"}, cfg.Rules)
	assert.Equal(t, []string{".mjs"}, cfg.Extensions)
}

func TestLoadConfigErrors(t *testing.T) {
	t.Run("unknown key", func(t *testing.T) {
		dir := t.TempDir()
		write(t, filepath.Join(dir, "renoma.toml"), "colour = \"red\"\n")
		_, err := loadConfig(filepath.Join(dir, ".env"), dir)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
		assert.Contains(t, err.Error(), "colour")
	})

	t.Run("bad toml", func(t *testing.T) {
		dir := t.TempDir()
		write(t, filepath.Join(dir, "renoma.toml"), "limit = \n")
		_, err := loadConfig(filepath.Join(dir, ".env"), dir)
		assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
	})

	t.Run("bad env int", func(t *testing.T) {
		dir := t.TempDir()
		t.Setenv("RENOMA_LIMIT", "many")
		_, err := loadConfig(filepath.Join(dir, ".env"), dir)
		assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
	})

	t.Run("env file is a directory", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.Mkdir(filepath.Join(dir, ".env"), 0755))
		_, err := loadConfig(filepath.Join(dir, ".env"), dir)
		assert.Error(t, err)
	})
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"redis", func(c *Config) { c.Cache = cacheRedis }, false},
		{"negative limit", func(c *Config) { c.Limit = -1 }, true},
		{"negative jobs", func(c *Config) { c.Jobs = -2 }, true},
		{"unknown cache", func(c *Config) { c.Cache = "memcached" }, true},
		{"bad extension", func(c *Config) { c.Extensions = []string{"js"} }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(&cfg)
			if tt.wantErr {
				assert.Error(t, cfg.validate())
			} else {
				assert.NoError(t, cfg.validate())
			}
		})
	}
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, splitList(""))
	assert.Nil(t, splitList(" , ,"))
	assert.Equal(t, []string{"a", "b"}, splitList("a, b,"))
}
