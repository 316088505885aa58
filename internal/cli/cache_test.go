package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCacheDirXDG(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if want := filepath.Join("/tmp/xdg", "renoma", "results"); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestCacheDirHome(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, ".cache", "renoma", "results"); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestCachePathCommand(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	c, out := testCLI(t)

	root := c.RootCommand()
	root.SetArgs([]string{"cache", "path"})
	if err := root.Execute(); err != nil {
		t.Fatalf("cache path: %v", err)
	}
	if !strings.HasSuffix(strings.TrimSpace(out.String()), filepath.Join("renoma", "results")) {
		t.Errorf("unexpected path output: %q", out.String())
	}
}

func TestCacheClearCommand(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", xdg)
	t.Chdir(t.TempDir())
	c, out := testCLI(t)

	entry := filepath.Join(xdg, "renoma", "results", "ab", "cdef.json")
	if err := os.MkdirAll(filepath.Dir(entry), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(entry, []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	root := c.RootCommand()
	root.SetArgs([]string{"cache", "clear", "--cache", "file"})
	if err := root.Execute(); err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	if _, err := os.Stat(entry); !os.IsNotExist(err) {
		t.Error("cache entry should be removed")
	}
	if !bytes.Contains(out.Bytes(), []byte("Cleared cached results")) {
		t.Errorf("unexpected output: %q", out.String())
	}
}

func TestCacheClearUsesProjectConfig(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", xdg)
	root := t.TempDir()
	write(t, filepath.Join(root, "package.json"), `{"name": "app"}`)
	write(t, filepath.Join(root, "renoma.toml"), "cache = \"none\"\n")
	sub := filepath.Join(root, "src", "components")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatal(err)
	}
	t.Chdir(sub)
	c, out := testCLI(t)

	cmd := c.RootCommand()
	cmd.SetArgs([]string{"cache", "clear"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	if !strings.Contains(out.String(), "Result cache is disabled") {
		t.Errorf("project renoma.toml not applied from a subdirectory: %q", out.String())
	}
}

func TestProjectDirFallsBack(t *testing.T) {
	dir := t.TempDir()
	if got := projectDir(dir); got != dir {
		t.Errorf("projectDir(%q) = %q, want the directory itself", dir, got)
	}
}
