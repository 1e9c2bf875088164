package config

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Config captures environment driven configuration values for the site.
type Config struct {
	HTTPPort int
	// SQLiteDSN is empty when client storage should stay in memory.
	SQLiteDSN       string
	SubmitDelay     time.Duration
	AuthDelay       time.Duration
	ClientCacheSize int
	CookieSecure    bool
	LogLevel        slog.Level
}

// Defaults for optional variables.
const (
	DefaultHTTPPort        = 8080
	DefaultSQLiteDSN       = "file:easyride.db?_pragma=foreign_keys(1)"
	DefaultSubmitDelay     = 1500 * time.Millisecond
	DefaultAuthDelay       = time.Second
	DefaultClientCacheSize = 1024
)

// Load parses configuration values from the current process environment.
//
// Every variable is optional. Invalid values are collected and reported
// together. Setting EASYRIDE_SQLITE_DSN to the empty string selects the in
// memory store.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:        DefaultHTTPPort,
		SQLiteDSN:       DefaultSQLiteDSN,
		SubmitDelay:     DefaultSubmitDelay,
		AuthDelay:       DefaultAuthDelay,
		ClientCacheSize: DefaultClientCacheSize,
		LogLevel:        slog.LevelInfo,
	}

	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("EASYRIDE_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 || port > 65535 {
			invalid = append(invalid, "EASYRIDE_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn, ok := os.LookupEnv("EASYRIDE_SQLITE_DSN"); ok {
		cfg.SQLiteDSN = strings.TrimSpace(dsn)
	}

	for key, target := range map[string]*time.Duration{
		"EASYRIDE_SUBMIT_DELAY": &cfg.SubmitDelay,
		"EASYRIDE_AUTH_DELAY":   &cfg.AuthDelay,
	} {
		value := strings.TrimSpace(os.Getenv(key))
		if value == "" {
			continue
		}
		d, err := time.ParseDuration(value)
		if err != nil || d < 0 {
			invalid = append(invalid, key)
			continue
		}
		*target = d
	}

	if sizeValue := strings.TrimSpace(os.Getenv("EASYRIDE_CLIENT_CACHE_SIZE")); sizeValue != "" {
		size, err := strconv.Atoi(sizeValue)
		if err != nil || size <= 0 {
			invalid = append(invalid, "EASYRIDE_CLIENT_CACHE_SIZE")
		} else {
			cfg.ClientCacheSize = size
		}
	}

	if secureValue := strings.TrimSpace(os.Getenv("EASYRIDE_COOKIE_SECURE")); secureValue != "" {
		secure, err := strconv.ParseBool(secureValue)
		if err != nil {
			invalid = append(invalid, "EASYRIDE_COOKIE_SECURE")
		} else {
			cfg.CookieSecure = secure
		}
	}

	if levelValue := strings.TrimSpace(os.Getenv("EASYRIDE_LOG_LEVEL")); levelValue != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(levelValue)); err != nil {
			invalid = append(invalid, "EASYRIDE_LOG_LEVEL")
		}
	}

	if len(invalid) > 0 {
		sort.Strings(invalid)
		return Config{}, fmt.Errorf("invalid environment variables: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

// Addr is the listen address for HTTPPort.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// InMemory reports whether client storage stays in process.
func (c Config) InMemory() bool {
	return c.SQLiteDSN == ""
}
