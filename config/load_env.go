package config

import (
	"log/slog"
	"path/filepath"

	"github.com/subosito/gotenv"
)

// LoadEnv reads config/envs/.env.<env> into the process environment.
// ENV_DIR points at another directory. Variables already set win over the
// file, and a missing file only logs a warning.
func LoadEnv(env string) {
	envFile := filepath.Join(getEnv("ENV_DIR", filepath.Join("config", "envs")), ".env."+env)
	if err := gotenv.Load(envFile); err != nil {
		slog.Warn("[Config] No .env file found, using OS environment",
			slog.String("file", envFile))
		return
	}
	slog.Debug("[Config] Loaded env file", slog.String("file", envFile))
}
