package cli

import (
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/matzehuels/renoma/pkg/errors"
	"github.com/matzehuels/renoma/pkg/render"
)

// Cache backends.
const (
	cacheNone  = "none"
	cacheFile  = "file"
	cacheRedis = "redis"
)

var cacheBackends = []string{cacheNone, cacheFile, cacheRedis}

// configFiles are looked up next to the root manifest, in order.
var configFiles = []string{"renoma.toml", ".renoma.toml"}

// envPrefix namespaces environment variables.
const envPrefix = "RENOMA_"

// Config is the merged configuration of one invocation.
//
// Sources, lowest precedence first: defaults, RENOMA_* variables (with a
// .env file filling unset ones), renoma.toml next to the root manifest,
// command-line flags.
type Config struct {
	Limit      int      `toml:"limit"`
	ErrorLimit int      `toml:"error_limit"`
	Ignore     []string `toml:"ignore"`
	Rules      []string `toml:"rules"`
	Extensions []string `toml:"extensions"`
	Jobs       int      `toml:"jobs"`
	Format     string   `toml:"format"`
	Cache      string   `toml:"cache"`
	RedisURL   string   `toml:"redis_url"`
	Summary    bool     `toml:"summary"`

	// File is the config file that was applied, if any.
	File string `toml:"-"`
}

func defaultConfig() Config {
	return Config{
		Format:   render.FormatText,
		Cache:    cacheFile,
		RedisURL: "redis://localhost:6379/0",
	}
}

// loadConfig merges defaults, environment and the project config file.
// envFile may be missing.
func loadConfig(envFile, projectDir string) (Config, error) {
	cfg := defaultConfig()

	dotenv, err := godotenv.Read(envFile)
	if err != nil && !os.IsNotExist(err) {
		return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", envFile)
	}
	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return cfg, err
	}

	for _, name := range configFiles {
		path := filepath.Join(projectDir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse %s", path)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return cfg, errors.New(errors.ErrCodeInvalidInput, "%s: unknown key %q", path, undecoded[0].String())
		}
		cfg.File = path
		break
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	ints := []struct {
		key string
		dst *int
	}{
		{"LIMIT", &c.Limit},
		{"ERROR_LIMIT", &c.ErrorLimit},
		{"JOBS", &c.Jobs},
	}
	for _, e := range ints {
		v, ok := lookup(envPrefix + e.key)
		if !ok || v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "%s%s", envPrefix, e.key)
		}
		*e.dst = n
	}

	lists := []struct {
		key string
		dst *[]string
	}{
		{"IGNORE", &c.Ignore},
		{"RULES", &c.Rules},
		{"EXTENSIONS", &c.Extensions},
	}
	for _, e := range lists {
		if v, ok := lookup(envPrefix + e.key); ok {
			*e.dst = splitList(v)
		}
	}

	strs := []struct {
		key string
		dst *string
	}{
		{"FORMAT", &c.Format},
		{"CACHE", &c.Cache},
		{"REDIS_URL", &c.RedisURL},
	}
	for _, e := range strs {
		if v, ok := lookup(envPrefix + e.key); ok && v != "" {
			*e.dst = v
		}
	}
	return nil
}

// validate checks values that every command relies on.
func (c *Config) validate() error {
	if c.Limit < 0 || c.ErrorLimit < 0 || c.Jobs < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "limit, error-limit and jobs must not be negative")
	}
	if !slices.Contains(cacheBackends, c.Cache) {
		return errors.New(errors.ErrCodeInvalidInput, "unknown cache backend %q (want one of %s)",
			c.Cache, strings.Join(cacheBackends, ", "))
	}
	for _, ext := range c.Extensions {
		if err := errors.ValidateExtension(ext); err != nil {
			return err
		}
	}
	return nil
}

// splitList splits a comma-separated value, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
