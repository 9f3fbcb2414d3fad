package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
		// PublicURL is the externally visible API base used to build the
		// apiUrl decoration on search results.
		PublicURL string `yaml:"public_url"`
	} `yaml:"server"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Source struct {
		BaseURL            string  `yaml:"base_url"`
		RequestTimeoutSecs int     `yaml:"request_timeout_secs"`
		MaxScrapeWorkers   int     `yaml:"max_scrape_workers"`
		RequestsPerSec     float64 `yaml:"requests_per_sec"`
	} `yaml:"source"`
	Auth struct {
		JWTSecret          string `yaml:"jwt_secret"`
		TokenDurationHours int    `yaml:"token_duration_hours"`
	} `yaml:"auth"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	var cfg Config
	cfg.Server.Host = "0.0.0.0"
	cfg.Server.Port = 8080
	cfg.Database.Path = "./data/manhwahub.db"
	cfg.Source.BaseURL = "https://manhwaclan.com"
	cfg.Source.RequestTimeoutSecs = 15
	cfg.Source.MaxScrapeWorkers = 4
	cfg.Source.RequestsPerSec = 2
	cfg.Auth.JWTSecret = "change-this-secret"
	cfg.Auth.TokenDurationHours = 24
	return cfg
}

// Load reads the YAML config at path, falling back to defaults when the file
// does not exist, then applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	applyEnv(&cfg)

	if cfg.Source.MaxScrapeWorkers <= 0 {
		cfg.Source.MaxScrapeWorkers = 1
	}
	if cfg.Source.RequestTimeoutSecs <= 0 {
		cfg.Source.RequestTimeoutSecs = 15
	}
	if cfg.Auth.TokenDurationHours <= 0 {
		cfg.Auth.TokenDurationHours = 24
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("SOURCE_BASE_URL"); v != "" {
		cfg.Source.BaseURL = v
	}
	if v := os.Getenv("PUBLIC_URL"); v != "" {
		cfg.Server.PublicURL = v
	}
	if v := os.Getenv("PORT"); v != "" {
		var port int
		if _, err := fmt.Sscanf(v, "%d", &port); err == nil && port > 0 {
			cfg.Server.Port = port
		}
	}
}

// Addr returns the listen address for the HTTP server.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// RequestTimeout returns the outbound request timeout.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.Source.RequestTimeoutSecs) * time.Second
}

// TokenDuration returns the JWT lifetime.
func (c Config) TokenDuration() time.Duration {
	return time.Duration(c.Auth.TokenDurationHours) * time.Hour
}

// APIBase returns the base URL under which the API routes are mounted.
func (c Config) APIBase() string {
	base := c.Server.PublicURL
	if base == "" {
		host := c.Server.Host
		if host == "0.0.0.0" || host == "" {
			host = "localhost"
		}
		base = fmt.Sprintf("http://%s:%d", host, c.Server.Port)
	}
	return strings.TrimRight(base, "/") + "/api"
}
