package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	home, _ := os.UserHomeDir()
	expected := filepath.Join(home, ".cache", appName)
	if dir != expected {
		t.Errorf("cacheDir() = %q, want %q", dir, expected)
	}
}

func TestCacheDirXDG(t *testing.T) {
	customCache := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", customCache)

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	expected := filepath.Join(customCache, appName)
	if dir != expected {
		t.Errorf("cacheDir() with XDG_CACHE_HOME = %q, want %q", dir, expected)
	}
}

func TestConfigDir(t *testing.T) {
	tests := []struct {
		name string
		xdg  string
		want func(home string) string
	}{
		{
			name: "home default",
			xdg:  "",
			want: func(home string) string { return filepath.Join(home, ".config", appName) },
		},
		{
			name: "xdg override",
			xdg:  "/tmp/custom-config",
			want: func(string) string { return filepath.Join("/tmp/custom-config", appName) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("XDG_CONFIG_HOME", tt.xdg)
			dir, err := configDir()
			if err != nil {
				t.Fatalf("configDir() error: %v", err)
			}
			home, _ := os.UserHomeDir()
			if want := tt.want(home); dir != want {
				t.Errorf("configDir() = %q, want %q", dir, want)
			}
		})
	}
}

func TestCountEntries(t *testing.T) {
	dir := t.TempDir()
	for _, p := range []string{"ab/one.json", "ab/two.json", "cd/three.json"} {
		path := filepath.Join(dir, p)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	n, err := countEntries(dir)
	if err != nil {
		t.Fatalf("countEntries() error: %v", err)
	}
	if n != 3 {
		t.Errorf("countEntries() = %d, want 3", n)
	}
}
