// Command server runs the Kittygram HTTP API.
package main

import (
	"flag"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sakif/kittygram/internal/server"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML, TOML or JSON config file")
	flag.Parse()

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := SetupLogger(cfg)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if cfg.Storage.Path != ":memory:" {
		dbDir := filepath.Dir(cfg.Storage.Path)
		if err := os.MkdirAll(dbDir, 0o755); err != nil {
			logger.Error("failed to create database directory",
				slog.String("dir", dbDir),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	srv, err := server.New(server.Config{
		Addr:            cfg.HTTP.Addr,
		DBPath:          cfg.Storage.Path,
		JWTSecret:       cfg.Auth.JWTSecret,
		TokenTTL:        cfg.Auth.TokenTTL,
		PasswordCost:    cfg.Auth.BcryptCost,
		ReadTimeout:     cfg.HTTP.ReadTimeout,
		WriteTimeout:    cfg.HTTP.WriteTimeout,
		ShutdownTimeout: cfg.HTTP.ShutdownTimeout,
	}, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
