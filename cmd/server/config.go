package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

// envPrefix namespaces environment overrides: http.addr is read from
// KITTYGRAM_HTTP_ADDR, auth.jwt_secret from KITTYGRAM_AUTH_JWT_SECRET.
const envPrefix = "KITTYGRAM"

// Config is everything the kittygram server reads at startup.
type Config struct {
	HTTP    HTTPConfig    `mapstructure:"http"`
	Storage StorageConfig `mapstructure:"storage"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Log     LogConfig     `mapstructure:"log"`
}

// HTTPConfig is the listener. Addr is passed to http.Server as is, so
// ":8080" listens on every interface.
type HTTPConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// StorageConfig locates the SQLite database. ":memory:" gives a throwaway
// catalog that disappears on exit.
type StorageConfig struct {
	Path string `mapstructure:"path"`
}

type AuthConfig struct {
	// JWTSecret has no default on purpose: the server refuses to start
	// until one is configured.
	JWTSecret  string        `mapstructure:"jwt_secret"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
	BcryptCost int           `mapstructure:"bcrypt_cost"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// defaults also registers every key with viper, which AutomaticEnv needs
// before Unmarshal will look a key up in the environment.
var defaults = map[string]any{
	"http.addr":             ":8080",
	"http.read_timeout":     "10s",
	"http.write_timeout":    "10s",
	"http.shutdown_timeout": "20s",
	"storage.path":          "data/kittygram.db",
	"auth.jwt_secret":       "",
	"auth.token_ttl":        "24h",
	"auth.bcrypt_cost":      12,
	"log.level":             "info",
	"log.format":            "json",
}

// LoadConfig layers defaults, the optional file at path and KITTYGRAM_*
// environment variables, in that order. A path that does not exist is not
// an error, so the same -config flag works on a fresh checkout.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decoding: %w", err)
	}
	return &cfg, nil
}

// Validate reports settings the server cannot start with. It runs after
// the logger is built, so the message lands in the configured format.
func (c *Config) Validate() error {
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("auth.jwt_secret must be at least 16 characters (set %s_AUTH_JWT_SECRET)", envPrefix)
	}
	if _, _, err := net.SplitHostPort(c.HTTP.Addr); err != nil {
		return fmt.Errorf("http.addr %q: %w", c.HTTP.Addr, err)
	}
	if c.Storage.Path == "" {
		return errors.New("storage.path must not be empty")
	}
	if c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("auth.bcrypt_cost %d outside [%d, %d]", c.Auth.BcryptCost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	if _, err := c.Log.level(); err != nil {
		return err
	}
	if f := strings.ToLower(c.Log.Format); f != "json" && f != "text" {
		return fmt.Errorf("log.format %q: want json or text", c.Log.Format)
	}
	return nil
}

// level parses names slog itself understands, such as "debug", "WARN" or
// "error+2".
func (c LogConfig) level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

// SetupLogger builds the process logger. An unparsable level falls back to
// info here; Validate is what reports it.
func SetupLogger(cfg *Config) *slog.Logger {
	level, _ := cfg.Log.level()
	opts := &slog.HandlerOptions{Level: level}

	if strings.EqualFold(cfg.Log.Format, "text") {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
