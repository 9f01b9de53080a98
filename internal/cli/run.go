package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"clipd/internal/pipeline"
)

// loadConfig layers defaults, the optional TOML file, and environment
// variables. Secrets only ever come from the environment.
func loadConfig(cmd *cobra.Command) (pipeline.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := pipeline.LoadFile(pipeline.Default(), path)
	if err != nil {
		return pipeline.Config{}, err
	}

	cfg.WhisperAPIKey = os.Getenv("WHISPER_API_KEY")
	cfg.WhisperBaseURL = getenvDefault("WHISPER_BASE_URL", cfg.WhisperBaseURL)
	cfg.WhisperModel = getenvDefault("WHISPER_MODEL", cfg.WhisperModel)

	cfg.OpenRouterAPIKey = os.Getenv("OPENROUTER_API_KEY")
	cfg.OpenRouterModel = getenvDefault("OPENROUTER_MODEL", cfg.OpenRouterModel)
	cfg.OpenRouterBaseURL = getenvDefault("OPENROUTER_BASE_URL", cfg.OpenRouterBaseURL)
	if hosts := os.Getenv("OPENROUTER_ALLOWED_HOSTS"); hosts != "" {
		cfg.OpenRouterAllowedHosts = strings.Split(hosts, ",")
	}

	if err := cfg.Validate(); err != nil {
		return pipeline.Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func buildUsecase(cmd *cobra.Command, log *slog.Logger) (pipeline.Config, builtDeps, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return pipeline.Config{}, builtDeps{}, err
	}
	uc, video, err := pipeline.Build(cfg, log)
	if err != nil {
		return pipeline.Config{}, builtDeps{}, err
	}
	return cfg, builtDeps{uc: uc, video: video}, nil
}
