package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/qs-lzh/movie-favorites/internal/util"
)

const (
	EnvDevelopment = "development"
	EnvTesting     = "testing"
	EnvProduction  = "production"
)

type Config struct {
	AppName    string
	AppVersion string
	Env        string
	Debug      bool

	DatabaseDSN string
	Addr        string
	CORSOrigins []string
	LogLevel    string

	// optional; empty disables redis rate limiting / activity events
	CacheURL string
	MQURL    string

	RateLimitEnabled  bool
	RateLimitCapacity int
	RateLimitInterval time.Duration

	ShutdownTimeout time.Duration
}

type profile struct {
	databaseDSN string
	debug       bool
	logLevel    string
}

var profiles = map[string]profile{
	EnvDevelopment: {databaseDSN: "sqlite://peliculas.db", debug: true, logLevel: "debug"},
	EnvTesting:     {databaseDSN: "sqlite://test_peliculas.db", debug: true, logLevel: "debug"},
	EnvProduction:  {databaseDSN: "sqlite://peliculas.db", debug: false, logLevel: "warn"},
}

func LoadConfig() (*Config, error) {
	if err := util.LoadEnv(); err != nil {
		return nil, err
	}

	env := strings.ToLower(getEnvString("APP_ENV", EnvDevelopment))
	p, ok := profiles[env]
	if !ok {
		return nil, fmt.Errorf("unknown APP_ENV %q (want development, testing or production)", env)
	}

	cfg := &Config{
		AppName:           getEnvString("APP_NAME", "Movie Favorites API"),
		AppVersion:        getEnvString("APP_VERSION", "1.0.0"),
		Env:               env,
		Debug:             getEnvBool("DEBUG", p.debug),
		DatabaseDSN:       getEnvString("DATABASE_DSN", p.databaseDSN),
		Addr:              getEnvString("ADDR", ":8000"),
		CORSOrigins:       splitList(getEnvString("CORS_ORIGINS", "*")),
		LogLevel:          getEnvString("LOG_LEVEL", p.logLevel),
		CacheURL:          os.Getenv("CACHE_URL"),
		MQURL:             os.Getenv("RABBIT_MQ_URL"),
		RateLimitEnabled:  getEnvBool("RATE_LIMIT_ENABLED", true),
		RateLimitCapacity: getEnvInt("RATE_LIMIT_CAPACITY", 120),
		RateLimitInterval: getEnvDuration("RATE_LIMIT_INTERVAL", time.Minute),
		ShutdownTimeout:   getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
	if cfg.RateLimitCapacity < 1 {
		cfg.RateLimitCapacity = 1
	}
	if cfg.RateLimitInterval <= 0 {
		cfg.RateLimitInterval = time.Minute
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

func getEnvString(key, defaultVal string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
