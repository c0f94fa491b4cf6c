package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// minProductionSecret is the shortest JWT_SECRET accepted in production.
const minProductionSecret = 32

type Config struct {
	Port          string        `mapstructure:"PORT"`
	Env           string        `mapstructure:"ENV"`
	DatabaseURL   string        `mapstructure:"DATABASE_URL"`
	DBSchema      string        `mapstructure:"DB_SCHEMA"`
	DBMaxConns    int32         `mapstructure:"DB_MAX_CONNS"`
	DBMinConns    int32         `mapstructure:"DB_MIN_CONNS"`
	JWTSecret     string        `mapstructure:"JWT_SECRET"`
	JWTTTL        time.Duration `mapstructure:"JWT_TTL"`
	RedisURL      string        `mapstructure:"REDIS_URL"`
	CORSOrigins   []string      `mapstructure:"CORS_ORIGINS"`
	BodyLimit     string        `mapstructure:"BODY_LIMIT"`
	MigrationsDir string        `mapstructure:"MIGRATIONS_DIR"`

	// LoginRatePerMinute caps password attempts per client IP; 0 disables it.
	LoginRatePerMinute int `mapstructure:"LOGIN_RATE_PER_MINUTE"`
}

var envKeys = []string{
	"PORT", "ENV", "DATABASE_URL", "DB_SCHEMA", "DB_MAX_CONNS", "DB_MIN_CONNS",
	"JWT_SECRET", "JWT_TTL", "REDIS_URL", "CORS_ORIGINS", "BODY_LIMIT", "MIGRATIONS_DIR",
	"LOGIN_RATE_PER_MINUTE",
}

// Load reads configuration from the environment, falling back to a .env file
// in the working directory when present.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "5000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_SCHEMA", "public")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000,http://localhost:3001,http://127.0.0.1:3000,http://127.0.0.1:3001")
	v.SetDefault("BODY_LIMIT", "1M")
	v.SetDefault("MIGRATIONS_DIR", "./migrations")
	v.SetDefault("LOGIN_RATE_PER_MINUTE", 20)

	for _, key := range envKeys {
		_ = v.BindEnv(key)
	}

	// A missing .env file is not an error.
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.CORSOrigins = splitList(v.GetString("CORS_ORIGINS"))

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction controls whether error responses may carry internal detail.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate rejects settings that are unsafe to serve with.
func (c *Config) Validate() error {
	switch c.Env {
	case "development", "test", "production":
	default:
		return fmt.Errorf("ENV must be development, test or production, got %q", c.Env)
	}
	if c.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive, got %s", c.JWTTTL)
	}
	if c.DBMaxConns <= 0 {
		return fmt.Errorf("DB_MAX_CONNS must be positive, got %d", c.DBMaxConns)
	}
	if c.LoginRatePerMinute < 0 {
		return fmt.Errorf("LOGIN_RATE_PER_MINUTE must not be negative, got %d", c.LoginRatePerMinute)
	}
	if c.IsProduction() {
		if len(c.JWTSecret) < minProductionSecret {
			return fmt.Errorf("JWT_SECRET must be at least %d characters in production", minProductionSecret)
		}
		for _, o := range c.CORSOrigins {
			if o == "*" {
				return fmt.Errorf("CORS_ORIGINS must not contain * in production")
			}
		}
	}
	return nil
}
