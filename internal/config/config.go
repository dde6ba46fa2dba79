package config

import "time"

type Duration struct {
	Duration time.Duration
}

type HTTPConfig struct {
	Addr              string   `yaml:"addr"`
	ReadHeaderTimeout Duration `yaml:"read_header_timeout"`
	IdleTimeout       Duration `yaml:"idle_timeout"`
	ShutdownTimeout   Duration `yaml:"shutdown_timeout"`
}

type StoreConfig struct {
	// Backend selects the durable KV implementation:
	// "memory", "sqlite", "postgres", or "redis".
	Backend string `yaml:"backend"`

	// SQLitePath is the database file for the sqlite backend.
	SQLitePath string `yaml:"sqlite_path,omitempty"`

	// PostgresDSN is the full DSN for the postgres backend.
	PostgresDSN string `yaml:"postgres_dsn,omitempty"`

	RedisAddr     string `yaml:"redis_addr,omitempty"`
	RedisPassword string `yaml:"redis_password,omitempty"`
	RedisDB       int    `yaml:"redis_db,omitempty"`
	RedisPrefix   string `yaml:"redis_prefix,omitempty"`
}

type RecommenderConfig struct {
	// Mode is "http" (real service) or "mock" (deterministic in-process
	// engine for development).
	Mode string `yaml:"mode"`

	// BaseURL is the recommendation service root; the client posts to
	// {base_url}/predict.
	BaseURL string `yaml:"base_url,omitempty"`

	// Timeout bounds one prediction round trip.
	Timeout Duration `yaml:"timeout,omitempty"`

	// JWTSecret, when set, signs each request with a short-lived HS256
	// bearer token.
	JWTSecret string `yaml:"jwt_secret,omitempty"`

	TopK      int `yaml:"top_k,omitempty"`
	FollowupN int `yaml:"followup_n,omitempty"`
}

type OtelConfig struct {
	Enabled bool `yaml:"enabled"`

	// Exporter is "otlp_http" or "stdout".
	Exporter string `yaml:"exporter,omitempty"`

	ServiceName string `yaml:"service_name,omitempty"`
	Version     string `yaml:"version,omitempty"`
}

type Config struct {
	Env         string            `yaml:"env"`
	HTTP        HTTPConfig        `yaml:"http"`
	Store       StoreConfig       `yaml:"store"`
	Recommender RecommenderConfig `yaml:"recommender"`
	Otel        OtelConfig        `yaml:"otel"`
}
