package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/stepgraph/pkg/cache"
	apperrors "github.com/matzehuels/stepgraph/pkg/errors"
	"github.com/matzehuels/stepgraph/pkg/pipeline"
)

const fullConfig = `
[layout]
base_width = 240
base_height = 50
margin_x = 20
margin_y = 30

[cache]
backend = "redis"
redis_addr = "localhost:6379"
redis_password = "secret"
redis_db = 2
mongo_uri = "mongodb://localhost:27017"
mongo_database = "flows"
mongo_collection = "charts"
prefix = "staging:"

[server]
addr = ":9090"
max_body_bytes = 1024
`

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeTempConfig(t, fullConfig))
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	want := Config{
		Layout: LayoutConfig{BaseWidth: 240, BaseHeight: 50, MarginX: 20, MarginY: 30},
		Cache: CacheConfig{
			Backend:         "redis",
			RedisAddr:       "localhost:6379",
			RedisPassword:   "secret",
			RedisDB:         2,
			MongoURI:        "mongodb://localhost:27017",
			MongoDatabase:   "flows",
			MongoCollection: "charts",
			Prefix:          "staging:",
		},
		Server: ServerConfig{Addr: ":9090", MaxBodyBytes: 1024},
	}
	if cfg != want {
		t.Errorf("LoadConfig() = %+v, want %+v", cfg, want)
	}
}

func TestLoadConfigDefaultLocation(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())
		cfg, err := LoadConfig("")
		if err != nil {
			t.Fatalf("LoadConfig() error: %v", err)
		}
		if cfg != (Config{}) {
			t.Errorf("LoadConfig() = %+v, want zero config", cfg)
		}
	})

	t.Run("present file", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("XDG_CONFIG_HOME", home)
		dir := filepath.Join(home, appName)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, configFileName), []byte("[server]\naddr = \":7000\"\n"), 0o644); err != nil {
			t.Fatal(err)
		}

		cfg, err := LoadConfig("")
		if err != nil {
			t.Fatalf("LoadConfig() error: %v", err)
		}
		if cfg.Server.Addr != ":7000" {
			t.Errorf("Server.Addr = %q, want :7000", cfg.Server.Addr)
		}
	})
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		path    func(t *testing.T) string
		code    apperrors.Code
		wantErr bool
	}{
		{
			name: "explicit missing",
			path: func(t *testing.T) string { return filepath.Join(t.TempDir(), "missing.toml") },
			code: apperrors.ErrCodeFileNotFound,
		},
		{
			name: "malformed toml",
			path: func(t *testing.T) string { return writeTempConfig(t, "[layout\nbase_width = ") },
			code: apperrors.ErrCodeInvalidInput,
		},
		{
			name: "negative size",
			path: func(t *testing.T) string { return writeTempConfig(t, "[layout]\nmargin_x = -1\n") },
			code: apperrors.ErrCodeInvalidInput,
		},
		{
			name: "unknown backend",
			path: func(t *testing.T) string { return writeTempConfig(t, "[cache]\nbackend = \"memcached\"\n") },
			code: apperrors.ErrCodeInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(tt.path(t))
			if err == nil {
				t.Fatal("expected error")
			}
			if !apperrors.Is(err, tt.code) {
				t.Errorf("error %v does not carry code %s", err, tt.code)
			}
		})
	}
}

func TestConfigCacheOptions(t *testing.T) {
	cfg, err := LoadConfig(writeTempConfig(t, fullConfig))
	if err != nil {
		t.Fatal(err)
	}

	got := cfg.CacheOptions()
	want := cache.Options{
		Backend: cache.BackendRedis,
		Redis:   cache.RedisOptions{Addr: "localhost:6379", Password: "secret", DB: 2},
		Mongo:   cache.MongoOptions{URI: "mongodb://localhost:27017", Database: "flows", Collection: "charts"},
	}
	if got != want {
		t.Errorf("CacheOptions() = %+v, want %+v", got, want)
	}
}

func TestConfigKeyer(t *testing.T) {
	if k := (Config{}).Keyer(); k != nil {
		t.Errorf("Keyer() without prefix = %T, want nil", k)
	}

	cfg := Config{Cache: CacheConfig{Prefix: "staging:"}}
	opts := cache.ChartKeyOpts{BaseWidth: 200}
	got := cfg.Keyer().ChartKey("h", opts)
	if want := "staging:" + cache.NewDefaultKeyer().ChartKey("h", opts); got != want {
		t.Errorf("ChartKey = %s, want %s", got, want)
	}
}

func TestLayoutConfigApply(t *testing.T) {
	tests := []struct {
		name string
		cfg  LayoutConfig
		want pipeline.Options
	}{
		{"zero leaves defaults", LayoutConfig{}, pipeline.Options{BaseWidth: 200, BaseHeight: 60, MarginX: 40, MarginY: 40}},
		{"partial", LayoutConfig{BaseHeight: 30}, pipeline.Options{BaseWidth: 200, BaseHeight: 30, MarginX: 40, MarginY: 40}},
		{"full", LayoutConfig{BaseWidth: 1, BaseHeight: 2, MarginX: 3, MarginY: 4}, pipeline.Options{BaseWidth: 1, BaseHeight: 2, MarginX: 3, MarginY: 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts pipeline.Options
			tt.cfg.apply(&opts)
			opts.SetLayoutDefaults()
			if opts.BaseWidth != tt.want.BaseWidth || opts.BaseHeight != tt.want.BaseHeight ||
				opts.MarginX != tt.want.MarginX || opts.MarginY != tt.want.MarginY {
				t.Errorf("apply() = %v/%v/%v/%v, want %v/%v/%v/%v",
					opts.BaseWidth, opts.BaseHeight, opts.MarginX, opts.MarginY,
					tt.want.BaseWidth, tt.want.BaseHeight, tt.want.MarginX, tt.want.MarginY)
			}
		})
	}
}
