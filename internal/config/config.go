package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

// DefaultConfigPath is read when no explicit file is given and it exists.
const DefaultConfigPath = "etc/config.yaml"

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Admin    AdminConfig    `yaml:"admin"`
}

type ServerConfig struct {
	Port          string   `yaml:"port"`
	SessionSecret string   `yaml:"session_secret"`
	JWTSecret     string   `yaml:"jwt_secret"`
	TokenTTLHours int      `yaml:"token_ttl_hours"`
	CORSOrigins   []string `yaml:"cors_origins"`
}

type DatabaseConfig struct {
	Driver      string `yaml:"driver"`
	DSN         string `yaml:"dsn"`
	MaxAttempts int    `yaml:"max_attempts"`
	LogQueries  bool   `yaml:"log_queries"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	Console    bool   `yaml:"console"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// AdminConfig seeds the first administrator account.
type AdminConfig struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	FullName string `yaml:"full_name"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:          "8080",
			TokenTTLHours: 7 * 24,
			CORSOrigins:   []string{"*"},
		},
		Database: DatabaseConfig{Driver: DriverPostgres, MaxAttempts: 10},
		Log:      LogConfig{Level: "info", Console: true, MaxSizeMB: 100, MaxBackups: 3, MaxAgeDays: 30},
		Admin:    AdminConfig{Email: "admin@maint.local", Password: "Admin123!", FullName: "Administrator"},
	}
}

// Load builds the configuration from defaults, an optional YAML file, a .env
// file and finally the process environment.
func Load(configFile string) (*Config, error) {
	c := Default()

	path := configFile
	if path == "" {
		if _, err := os.Stat(DefaultConfigPath); err == nil {
			path = DefaultConfigPath
		}
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	_ = godotenv.Load()

	envOverride(&c.Server.Port, "SERVER_PORT")
	envOverride(&c.Server.SessionSecret, "SESSION_SECRET")
	envOverride(&c.Server.JWTSecret, "JWT_SECRET")
	envOverrideInt(&c.Server.TokenTTLHours, "TOKEN_TTL_HOURS")
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.Server.CORSOrigins = splitList(v)
	}
	envOverride(&c.Database.Driver, "DB_DRIVER")
	envOverride(&c.Database.DSN, "DB_DSN")
	envOverrideInt(&c.Database.MaxAttempts, "DB_MAX_ATTEMPTS")
	envOverride(&c.Log.Level, "LOG_LEVEL")
	envOverride(&c.Log.File, "LOG_FILE")
	envOverride(&c.Admin.Email, "ADMIN_EMAIL")
	envOverride(&c.Admin.Password, "ADMIN_PASSWORD")

	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) validate() error {
	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	switch c.Database.Driver {
	case DriverPostgres, DriverMySQL, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errors.New("DB_DSN is not set")
	}
	if c.Server.SessionSecret == "" {
		return errors.New("SESSION_SECRET is not set")
	}
	if c.Server.JWTSecret == "" {
		c.Server.JWTSecret = c.Server.SessionSecret
	}
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Server.TokenTTLHours <= 0 {
		c.Server.TokenTTLHours = 7 * 24
	}
	if c.Database.MaxAttempts <= 0 {
		c.Database.MaxAttempts = 1
	}
	return nil
}

func (c *Config) Addr() string {
	return ":" + c.Server.Port
}

func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.Server.TokenTTLHours) * time.Hour
}

func envOverride(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envOverrideInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
