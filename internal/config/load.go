package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	s := strings.TrimSpace(value.Value)
	if s == "" || s == "null" {
		d.Duration = 0
		return nil
	}
	if dd, err := time.ParseDuration(s); err == nil {
		d.Duration = dd
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("duration must be a string like \"15s\" or int nanoseconds: %q", s)
	}
	d.Duration = time.Duration(n)
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

func defaultConfig() *Config {
	return &Config{
		Env: "development",
		HTTP: HTTPConfig{
			Addr:              ":8080",
			ReadHeaderTimeout: Duration{Duration: 5 * time.Second},
			IdleTimeout:       Duration{Duration: 2 * time.Minute},
			ShutdownTimeout:   Duration{Duration: 15 * time.Second},
		},
		Store: StoreConfig{
			Backend:    "sqlite",
			SQLitePath: filepath.Join("data", "app.db"),
		},
		Recommender: RecommenderConfig{
			Mode:      "mock",
			Timeout:   Duration{Duration: 15 * time.Second},
			TopK:      5,
			FollowupN: 3,
		},
		Otel: OtelConfig{
			Enabled:     false,
			Exporter:    "stdout",
			ServiceName: "autism-parent-app",
		},
	}
}

// Load builds the effective config: defaults, then the optional YAML file
// (APA_CONFIG_PATH or ./config/config.yaml), then APA_* environment
// overrides, then validation.
func Load() (*Config, error) {
	cfg := defaultConfig()

	cfgPath := strings.TrimSpace(os.Getenv("APA_CONFIG_PATH"))
	if cfgPath == "" {
		if wd, err := os.Getwd(); err == nil {
			p := filepath.Join(wd, "config", "config.yaml")
			if _, err := os.Stat(p); err == nil {
				cfgPath = p
			}
		}
	}

	if cfgPath != "" {
		b, err := os.ReadFile(cfgPath)
		if err != nil {
			return nil, fmt.Errorf("read config %q: %w", cfgPath, err)
		}
		loaded := defaultConfig()
		if err := yaml.Unmarshal(b, loaded); err != nil {
			return nil, fmt.Errorf("parse config %q: %w", cfgPath, err)
		}
		cfg = loaded
	}

	applyEnv(cfg)

	if err := normalize(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("APA_ENV")); v != "" {
		cfg.Env = v
	}
	if v := strings.TrimSpace(os.Getenv("APA_HTTP_ADDR")); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := strings.TrimSpace(os.Getenv("APA_STORE_BACKEND")); v != "" {
		cfg.Store.Backend = v
	}
	if v := strings.TrimSpace(os.Getenv("APA_SQLITE_PATH")); v != "" {
		cfg.Store.SQLitePath = v
	}
	if v := strings.TrimSpace(os.Getenv("APA_POSTGRES_DSN")); v != "" {
		cfg.Store.PostgresDSN = v
	}
	if v := strings.TrimSpace(os.Getenv("APA_REDIS_ADDR")); v != "" {
		cfg.Store.RedisAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("APA_RECOMMENDER_MODE")); v != "" {
		cfg.Recommender.Mode = v
	}
	if v := strings.TrimSpace(os.Getenv("APA_RECOMMENDER_BASE_URL")); v != "" {
		cfg.Recommender.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("APA_RECOMMENDER_TIMEOUT")); v != "" {
		if dd, err := time.ParseDuration(v); err == nil {
			cfg.Recommender.Timeout = Duration{Duration: dd}
		}
	}
	if v := strings.TrimSpace(os.Getenv("APA_RECOMMENDER_JWT_SECRET")); v != "" {
		cfg.Recommender.JWTSecret = v
	}
	if v := strings.TrimSpace(os.Getenv("APA_OTEL_ENABLED")); v != "" {
		cfg.Otel.Enabled = parseBool(v)
	}
}

func normalize(cfg *Config) error {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "development"
	}
	if strings.TrimSpace(cfg.HTTP.Addr) == "" {
		cfg.HTTP.Addr = ":8080"
	}
	if cfg.HTTP.ReadHeaderTimeout.Duration <= 0 {
		cfg.HTTP.ReadHeaderTimeout = Duration{Duration: 5 * time.Second}
	}
	if cfg.HTTP.IdleTimeout.Duration <= 0 {
		cfg.HTTP.IdleTimeout = Duration{Duration: 2 * time.Minute}
	}
	if cfg.HTTP.ShutdownTimeout.Duration <= 0 {
		cfg.HTTP.ShutdownTimeout = Duration{Duration: 15 * time.Second}
	}

	cfg.Store.Backend = strings.ToLower(strings.TrimSpace(cfg.Store.Backend))
	switch cfg.Store.Backend {
	case "":
		cfg.Store.Backend = "sqlite"
	case "memory", "sqlite", "postgres", "redis":
	default:
		return fmt.Errorf("invalid store.backend %q", cfg.Store.Backend)
	}
	if cfg.Store.Backend == "sqlite" && strings.TrimSpace(cfg.Store.SQLitePath) == "" {
		cfg.Store.SQLitePath = filepath.Join("data", "app.db")
	}
	if cfg.Store.Backend == "postgres" && strings.TrimSpace(cfg.Store.PostgresDSN) == "" {
		return fmt.Errorf("store.backend=postgres requires store.postgres_dsn")
	}
	if cfg.Store.Backend == "redis" && strings.TrimSpace(cfg.Store.RedisAddr) == "" {
		return fmt.Errorf("store.backend=redis requires store.redis_addr")
	}

	cfg.Recommender.Mode = strings.ToLower(strings.TrimSpace(cfg.Recommender.Mode))
	switch cfg.Recommender.Mode {
	case "":
		cfg.Recommender.Mode = "mock"
	case "http", "mock":
	default:
		return fmt.Errorf("invalid recommender.mode %q", cfg.Recommender.Mode)
	}
	cfg.Recommender.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.Recommender.BaseURL), "/")
	if cfg.Recommender.Mode == "http" && cfg.Recommender.BaseURL == "" {
		return fmt.Errorf("recommender.mode=http requires recommender.base_url")
	}
	if cfg.Recommender.Timeout.Duration <= 0 {
		cfg.Recommender.Timeout = Duration{Duration: 15 * time.Second}
	}
	if cfg.Recommender.TopK <= 0 {
		cfg.Recommender.TopK = 5
	}
	if cfg.Recommender.FollowupN <= 0 {
		cfg.Recommender.FollowupN = 3
	}

	cfg.Otel.Exporter = strings.ToLower(strings.TrimSpace(cfg.Otel.Exporter))
	switch cfg.Otel.Exporter {
	case "":
		cfg.Otel.Exporter = "stdout"
	case "otlp_http", "stdout":
	default:
		return fmt.Errorf("invalid otel.exporter %q", cfg.Otel.Exporter)
	}
	if strings.TrimSpace(cfg.Otel.ServiceName) == "" {
		cfg.Otel.ServiceName = "autism-parent-app"
	}

	return nil
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "t", "true", "y", "yes", "on":
		return true
	default:
		return false
	}
}
