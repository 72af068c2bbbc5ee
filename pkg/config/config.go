// Package config loads catalog configuration from defaults, an optional YAML
// file and CATALOG_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override: api.base_url is read from
// CATALOG_API_BASE_URL.
const EnvPrefix = "CATALOG"

// DefaultFile is read from the working directory when no file is given.
const DefaultFile = "catalog.yaml"

// Preference backends.
const (
	BackendMemory = "memory"
	BackendNATS   = "nats"
	BackendNeo4j  = "neo4j"
)

// Config is the complete catalog configuration.
type Config struct {
	API   APIConfig   `mapstructure:"api"`
	Web   WebConfig   `mapstructure:"web"`
	Prefs PrefsConfig `mapstructure:"prefs"`
	NATS  NATSConfig  `mapstructure:"nats"`
	Neo4j Neo4jConfig `mapstructure:"neo4j"`
	Log   LogConfig   `mapstructure:"log"`
}

// APIConfig locates the catalog API.
type APIConfig struct {
	BaseURL string `mapstructure:"base_url"`
	// RateLimit caps requests per second; 0 disables throttling.
	RateLimit float64 `mapstructure:"rate_limit"`
	Burst     int     `mapstructure:"burst"`
	// BreakerThreshold is how many consecutive upstream failures open the
	// circuit breaker; 0 disables it.
	BreakerThreshold int           `mapstructure:"breaker_threshold"`
	BreakerTimeout   time.Duration `mapstructure:"breaker_timeout"`
}

// WebConfig controls the web front.
type WebConfig struct {
	Addr       string        `mapstructure:"addr"`
	SessionTTL time.Duration `mapstructure:"session_ttl"`
}

// PrefsConfig selects where visitor preferences are stored.
type PrefsConfig struct {
	Backend string `mapstructure:"backend"`
}

type NATSConfig struct {
	URL    string `mapstructure:"url"`
	Bucket string `mapstructure:"bucket"`
}

type Neo4jConfig struct {
	URL  string `mapstructure:"url"`
	User string `mapstructure:"user"`
	Pass string `mapstructure:"pass"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		API:   APIConfig{BaseURL: "http://localhost:8080", Burst: 1, BreakerTimeout: 30 * time.Second},
		Web:   WebConfig{Addr: ":8090", SessionTTL: 30 * time.Minute},
		Prefs: PrefsConfig{Backend: BackendMemory},
		NATS:  NATSConfig{URL: "nats://127.0.0.1:4222", Bucket: "catalog_prefs"},
		Neo4j: Neo4jConfig{URL: "neo4j://localhost:7687", User: "neo4j", Pass: "password"},
		Log:   LogConfig{Level: "info"},
	}
}

// SetDefaults registers the built-in values with v.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("api.base_url", d.API.BaseURL)
	v.SetDefault("api.rate_limit", d.API.RateLimit)
	v.SetDefault("api.burst", d.API.Burst)
	v.SetDefault("api.breaker_threshold", d.API.BreakerThreshold)
	v.SetDefault("api.breaker_timeout", d.API.BreakerTimeout)
	v.SetDefault("web.addr", d.Web.Addr)
	v.SetDefault("web.session_ttl", d.Web.SessionTTL)
	v.SetDefault("prefs.backend", d.Prefs.Backend)
	v.SetDefault("nats.url", d.NATS.URL)
	v.SetDefault("nats.bucket", d.NATS.Bucket)
	v.SetDefault("neo4j.url", d.Neo4j.URL)
	v.SetDefault("neo4j.user", d.Neo4j.User)
	v.SetDefault("neo4j.pass", d.Neo4j.Pass)
	v.SetDefault("log.level", d.Log.Level)
}

// New returns a viper instance with defaults and environment binding set up.
// Flags may be bound to it before calling Load.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads file (or ./catalog.yaml when file is empty and present) into v
// and decodes the result. A missing default file is not an error; a missing
// explicit file is.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(strings.TrimSuffix(DefaultFile, ".yaml"))
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}
	return &cfg, nil
}

// ValidationError reports one invalid setting.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every invalid setting.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return "config: invalid: " + strings.Join(msgs, "; ")
}

// Validate checks the configuration and returns every problem found.
func (c *Config) Validate() []ValidationError {
	var errs []ValidationError
	if u, err := url.Parse(c.API.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, ValidationError{"api.base_url", "must be an absolute URL"})
	}
	if c.API.RateLimit < 0 {
		errs = append(errs, ValidationError{"api.rate_limit", "must not be negative"})
	}
	if c.API.RateLimit > 0 && c.API.Burst < 1 {
		errs = append(errs, ValidationError{"api.burst", "must be at least 1 when rate_limit is set"})
	}
	if c.API.BreakerThreshold < 0 {
		errs = append(errs, ValidationError{"api.breaker_threshold", "must not be negative"})
	}
	if c.API.BreakerThreshold > 0 && c.API.BreakerTimeout <= 0 {
		errs = append(errs, ValidationError{"api.breaker_timeout", "must be positive when the breaker is enabled"})
	}
	if c.Web.SessionTTL <= 0 {
		errs = append(errs, ValidationError{"web.session_ttl", "must be positive"})
	}
	switch c.Prefs.Backend {
	case BackendMemory, BackendNATS, BackendNeo4j:
	default:
		errs = append(errs, ValidationError{"prefs.backend", fmt.Sprintf("unknown backend %q", c.Prefs.Backend)})
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		errs = append(errs, ValidationError{"log.level", err.Error()})
	}
	return errs
}

// SlogLevel returns the configured level, defaulting to info.
func (c LogConfig) SlogLevel() slog.Level {
	l, err := parseLevel(c.Level)
	if err != nil {
		return slog.LevelInfo
	}
	return l
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("unknown level %q", s)
	}
	return l, nil
}
