package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APA_CONFIG_PATH", "APA_ENV", "APA_HTTP_ADDR", "APA_STORE_BACKEND",
		"APA_SQLITE_PATH", "APA_POSTGRES_DSN", "APA_REDIS_ADDR",
		"APA_RECOMMENDER_MODE", "APA_RECOMMENDER_BASE_URL",
		"APA_RECOMMENDER_TIMEOUT", "APA_RECOMMENDER_JWT_SECRET",
		"APA_OTEL_ENABLED",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Env != "development" {
		t.Fatalf("env got=%q, want development", cfg.Env)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Fatalf("addr got=%q, want :8080", cfg.HTTP.Addr)
	}
	if cfg.Store.Backend != "sqlite" || cfg.Store.SQLitePath == "" {
		t.Fatalf("store got=%+v, want sqlite with a default path", cfg.Store)
	}
	if cfg.Recommender.Mode != "mock" {
		t.Fatalf("mode got=%q, want mock", cfg.Recommender.Mode)
	}
	if cfg.Recommender.Timeout.Duration != 15*time.Second {
		t.Fatalf("timeout got=%v, want 15s", cfg.Recommender.Timeout.Duration)
	}
	if cfg.Recommender.TopK != 5 || cfg.Recommender.FollowupN != 3 {
		t.Fatalf("got top_k=%d followup_n=%d, want 5/3", cfg.Recommender.TopK, cfg.Recommender.FollowupN)
	}
	if cfg.Otel.Enabled {
		t.Fatal("otel must default to disabled")
	}
}

func TestLoad_FileThenEnvPrecedence(t *testing.T) {
	clearEnv(t)

	body := `
env: production
http:
  addr: ":9090"
  read_header_timeout: 10s
store:
  backend: sqlite
  sqlite_path: /tmp/file.db
recommender:
  mode: http
  base_url: https://rec.example.com/
  timeout: 20s
otel:
  enabled: true
  exporter: otlp_http
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("APA_CONFIG_PATH", path)
	// Env wins over the file.
	t.Setenv("APA_STORE_BACKEND", "memory")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Env != "production" {
		t.Fatalf("env got=%q, want production", cfg.Env)
	}
	if cfg.HTTP.Addr != ":9090" {
		t.Fatalf("addr got=%q, want :9090", cfg.HTTP.Addr)
	}
	if cfg.HTTP.ReadHeaderTimeout.Duration != 10*time.Second {
		t.Fatalf("read_header_timeout got=%v, want 10s", cfg.HTTP.ReadHeaderTimeout.Duration)
	}
	// Unset file fields keep their defaults.
	if cfg.HTTP.IdleTimeout.Duration != 2*time.Minute {
		t.Fatalf("idle_timeout got=%v, want default 2m", cfg.HTTP.IdleTimeout.Duration)
	}
	if cfg.Store.Backend != "memory" {
		t.Fatalf("backend got=%q, want memory (env override)", cfg.Store.Backend)
	}
	if cfg.Recommender.BaseURL != "https://rec.example.com" {
		t.Fatalf("base_url got=%q, want trailing slash trimmed", cfg.Recommender.BaseURL)
	}
	if cfg.Recommender.Timeout.Duration != 20*time.Second {
		t.Fatalf("timeout got=%v, want 20s", cfg.Recommender.Timeout.Duration)
	}
	if !cfg.Otel.Enabled || cfg.Otel.Exporter != "otlp_http" {
		t.Fatalf("otel got=%+v, want enabled otlp_http", cfg.Otel)
	}
}

func TestLoad_ValidationFailures(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantSub string
	}{
		{
			name:    "unknown backend",
			env:     map[string]string{"APA_STORE_BACKEND": "etcd"},
			wantSub: "invalid store.backend",
		},
		{
			name:    "redis without addr",
			env:     map[string]string{"APA_STORE_BACKEND": "redis"},
			wantSub: "requires store.redis_addr",
		},
		{
			name:    "http mode without base url",
			env:     map[string]string{"APA_RECOMMENDER_MODE": "http"},
			wantSub: "requires recommender.base_url",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tc.wantSub) {
				t.Fatalf("error got=%v, want substring %q", err, tc.wantSub)
			}
		})
	}
}

func TestDuration_UnmarshalYAML(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    time.Duration
		wantErr bool
	}{
		{name: "duration string", in: "15s", want: 15 * time.Second},
		{name: "compound duration", in: "1m30s", want: 90 * time.Second},
		{name: "integer nanoseconds", in: "500000000", want: 500 * time.Millisecond},
		{name: "empty is zero", in: `""`, want: 0},
		{name: "garbage", in: "fast", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var d Duration
			err := yaml.Unmarshal([]byte(tc.in), &d)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("got=%v, want error", d.Duration)
				}
				return
			}
			if err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if d.Duration != tc.want {
				t.Fatalf("got=%v, want %v", d.Duration, tc.want)
			}
		})
	}
}
