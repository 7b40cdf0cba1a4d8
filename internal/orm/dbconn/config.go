package dbconn

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds the MySQL connection parameters the ORM opens against.
// Values are seeded from environment variables and may be overridden by
// an optional TOML file.
type Config struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
	TLS      bool   `toml:"tls"`

	MaxOpenConns    int           `toml:"max_open_conns"`
	MaxIdleConns    int           `toml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `toml:"-"`

	RetryMaxElapsed time.Duration `toml:"-"`
}

func applyDefaults(cfg *Config) {
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == 0 {
		cfg.Port = 3306
	}
	if cfg.User == "" {
		cfg.User = "root"
	}
	if cfg.Database == "" {
		cfg.Database = "goorm"
	}
	if cfg.MaxOpenConns == 0 {
		cfg.MaxOpenConns = 10
	}
	if cfg.MaxIdleConns == 0 {
		cfg.MaxIdleConns = 5
	}
	if cfg.ConnMaxLifetime == 0 {
		cfg.ConnMaxLifetime = 5 * time.Minute
	}
	if cfg.RetryMaxElapsed == 0 {
		cfg.RetryMaxElapsed = 30 * time.Second
	}
}

func fromEnv() Config {
	var cfg Config
	cfg.Host = os.Getenv("GOORM_DB_HOST")
	if port := os.Getenv("GOORM_DB_PORT"); port != "" {
		if n, err := strconv.Atoi(port); err == nil {
			cfg.Port = n
		}
	}
	cfg.User = os.Getenv("GOORM_DB_USER")
	cfg.Password = os.Getenv("GOORM_DB_PASSWORD")
	cfg.Database = os.Getenv("GOORM_DB_NAME")
	cfg.TLS = os.Getenv("GOORM_DB_TLS") == "true"
	return cfg
}

// LoadConfig builds a Config from the environment, optionally overlaid
// by a TOML file at path (empty path skips the file). Env vars seed the
// defaults; file values, when present, take precedence.
func LoadConfig(path string) (*Config, error) {
	cfg := fromEnv()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, derr := toml.DecodeFile(path, &cfg); derr != nil {
				return nil, fmt.Errorf("dbconn: decode config file %s: %w", path, derr)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("dbconn: stat config file %s: %w", path, err)
		}
	}

	applyDefaults(&cfg)
	return &cfg, nil
}
