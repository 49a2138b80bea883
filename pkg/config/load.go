package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Load applies the first env file it can locate among candidates on top of
// the process environment and decodes the result. With no candidates it
// tries ./.env only. Missing files are not an error; a missing required
// variable is.
func Load(candidates ...string) (*App, error) {
	logger := slog.Default()

	if len(candidates) == 0 {
		if err := godotenv.Load(); err != nil {
			logger.Debug("no .env in working directory")
		}
		return decode(logger)
	}

	for _, name := range candidates {
		path, err := FindEnvFile(name)
		if err != nil {
			logger.Debug("env file not found", "name", name)
			continue
		}
		if err := godotenv.Load(path); err != nil {
			logger.Warn("env file unreadable", "path", path, "error", err)
			continue
		}
		logger.Info("env file applied", "path", path)
		break
	}
	return decode(logger)
}

// FindEnvFile looks for name in the working directory and each of its
// parents, returning the first match. Package tests run from nested
// directories rely on this to reach the repository's .env.test.
func FindEnvFile(name string) (string, error) {
	if name == "" {
		name = ".env"
	}
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("resolve working directory: %w", err)
	}
	for prev := ""; dir != prev; prev, dir = dir, filepath.Dir(dir) {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", fmt.Errorf("%s: %w", name, os.ErrNotExist)
}

func decode(logger *slog.Logger) (*App, error) {
	var cfg App
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	logger.Info("configuration ready",
		slog.String("env", cfg.Env),
		slog.Group("server", "port", cfg.Server.Port),
		slog.Group("db", "url", redact(cfg.DB.Url)),
		slog.Group("auth", "jwt_expiry", cfg.Auth.Jwt.Expiry),
		slog.Group("rate_limit", "max", cfg.RateLimit.MaxRequests, "window", cfg.RateLimit.Window),
		slog.Group("bus", "driver", cfg.Bus.Driver),
		slog.Group("cache", "driver", cfg.Cache.Driver),
		slog.Group("stripe", "env", cfg.PaymentProviders.Stripe.Env, "api_key", redact(cfg.PaymentProviders.Stripe.ApiKey)),
		slog.Group("cloudinary", "cloud", cfg.Cloudinary.CloudName),
	)
	return &cfg, nil
}

// redact keeps a short prefix and suffix so operators can tell keys apart.
func redact(secret string) string {
	if len(secret) <= 6 {
		return "****"
	}
	return secret[:2] + "****" + secret[len(secret)-4:]
}
