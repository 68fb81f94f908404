// Package config loads server settings from an optional .env file, an
// optional YAML file and the environment, in that order of precedence
// (environment wins).
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DevSecret signs tokens when PLATFORM is dev and no secret is configured.
const DevSecret = "pocketwise-dev-secret"

type Config struct {
	Platform   string        `yaml:"platform"`
	Port       string        `yaml:"port"`
	Secret     string        `yaml:"secret"`
	TokenTTL   time.Duration `yaml:"token_ttl"`
	CORSOrigin string        `yaml:"cors_origin"`
	LogLevel   string        `yaml:"log_level"`
	DB         DBConfig      `yaml:"db"`
	AMQP       AMQPConfig    `yaml:"amqp"`
}

type DBConfig struct {
	Driver   string `yaml:"driver"`
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
	MaxConns int    `yaml:"max_conns"`
}

type AMQPConfig struct {
	URL      string `yaml:"url"`
	Exchange string `yaml:"exchange"`
}

func Default() *Config {
	return &Config{
		Platform:   "prod",
		Port:       "8080",
		TokenTTL:   24 * time.Hour,
		CORSOrigin: "http://localhost:3000",
		LogLevel:   "INFO",
		DB: DBConfig{
			Driver:   "postgres",
			Host:     "localhost",
			Port:     "5432",
			User:     "postgres",
			Password: "postgres",
			Name:     "pocketwise",
			SSLMode:  "disable",
			MaxConns: 10,
		},
		AMQP: AMQPConfig{
			Exchange: "pocketwise",
		},
	}
}

// Load builds a validated Config. envPath may be empty; a missing .env file
// is not an error.
func Load(envPath string) (*Config, error) {
	if envPath != "" {
		_ = godotenv.Load(envPath)
	}

	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if cfg.Platform == "dev" && cfg.Secret == "" {
		cfg.Secret = DevSecret
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile overlays the values present in a YAML file.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() error {
	setString(&c.Platform, "PLATFORM")
	setString(&c.Port, "PORT")
	setString(&c.Secret, "JWT_SECRET")
	setString(&c.Secret, "SECRET")
	setString(&c.CORSOrigin, "CORS_ORIGIN")
	setString(&c.LogLevel, "SLOG_LEVEL")

	if ttl := os.Getenv("TOKEN_TTL"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			return fmt.Errorf("invalid TOKEN_TTL %q: %w", ttl, err)
		}
		c.TokenTTL = d
	}

	setString(&c.DB.Driver, "DB_DRIVER")
	setString(&c.DB.URL, "DB_URL")
	setString(&c.DB.Host, "DB_HOST")
	setString(&c.DB.Port, "DB_PORT")
	setString(&c.DB.User, "DB_USER")
	setString(&c.DB.Password, "DB_PASSWORD")
	setString(&c.DB.Name, "DB_NAME")
	setString(&c.DB.SSLMode, "DB_SSLMODE")
	if conns := os.Getenv("DB_MAX_CONNS"); conns != "" {
		n, err := strconv.Atoi(conns)
		if err != nil {
			return fmt.Errorf("invalid DB_MAX_CONNS %q: %w", conns, err)
		}
		c.DB.MaxConns = n
	}

	setString(&c.AMQP.URL, "AMQP_URL")
	setString(&c.AMQP.Exchange, "AMQP_EXCHANGE")
	return nil
}

func setString(dst *string, envVar string) {
	if v := os.Getenv(envVar); v != "" {
		*dst = v
	}
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var problems []string

	switch c.Platform {
	case "dev", "prod":
	default:
		problems = append(problems, fmt.Sprintf("invalid platform '%s': must be dev or prod", c.Platform))
	}

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.Secret == "" {
		problems = append(problems, "secret must not be empty")
	} else if c.Platform != "dev" && c.Secret == DevSecret {
		problems = append(problems, "the development secret may only be used with platform dev")
	}

	if c.TokenTTL <= 0 {
		problems = append(problems, "token ttl must be positive")
	}

	switch c.DB.Driver {
	case "postgres", "pgx":
	default:
		problems = append(problems, fmt.Sprintf("invalid db driver '%s': must be postgres or pgx", c.DB.Driver))
	}
	if c.DB.MaxConns < 1 {
		problems = append(problems, "db max conns must be at least 1")
	}

	if c.AMQP.URL != "" {
		if u, err := url.Parse(c.AMQP.URL); err != nil || (u.Scheme != "amqp" && u.Scheme != "amqps") {
			problems = append(problems, fmt.Sprintf("invalid amqp url '%s'", c.AMQP.URL))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(problems, "; "))
	}
	return nil
}

// ConnectionString returns DB.URL when set, otherwise a DSN built from parts.
func (d DBConfig) ConnectionString() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		url.PathEscape(d.User),
		url.PathEscape(d.Password),
		d.Host,
		d.Port,
		d.Name,
		d.SSLMode,
	)
}

func (c *Config) CORSOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSOrigin, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
