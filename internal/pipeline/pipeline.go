// Package pipeline wires configuration to concrete adapters and hands back
// a ready-to-use detection usecase.
package pipeline

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"clipd/internal/domain/chunker"
	"clipd/internal/ports"
	"clipd/internal/ports/adapters/ffmpeg"
	"clipd/internal/ports/adapters/ids"
	"clipd/internal/ports/adapters/openrouter"
	"clipd/internal/ports/adapters/whisperapi"
	"clipd/internal/usecase"
)

type Config struct {
	Listen string `toml:"listen"`

	UploadsDir string `toml:"uploads_dir"`
	ClipsDir   string `toml:"clips_dir"`

	FFprobePath string `toml:"ffprobe_path"`

	WhisperBaseURL string `toml:"whisper_base_url"`
	WhisperAPIKey  string `toml:"-"`
	WhisperModel   string `toml:"whisper_model"`

	OpenRouterAPIKey       string   `toml:"-"`
	OpenRouterModel        string   `toml:"openrouter_model"`
	OpenRouterBaseURL      string   `toml:"openrouter_base_url"`
	OpenRouterAllowedHosts []string `toml:"openrouter_allowed_hosts"`

	ChunkWindowSeconds  float64 `toml:"chunk_window_seconds"`
	ChunkOverlapSeconds float64 `toml:"chunk_overlap_seconds"`

	TranscribeTimeoutSec int `toml:"transcribe_timeout_seconds"`
	CompleteTimeoutSec   int `toml:"complete_timeout_seconds"`
	RequestTimeoutSec    int `toml:"request_timeout_seconds"`
}

func (c Config) TranscribeTimeout() time.Duration {
	return time.Duration(c.TranscribeTimeoutSec) * time.Second
}

func (c Config) CompleteTimeout() time.Duration {
	return time.Duration(c.CompleteTimeoutSec) * time.Second
}

func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSec) * time.Second
}

func Default() Config {
	return Config{
		Listen:               ":8080",
		UploadsDir:           "data/uploads",
		ClipsDir:             "data/clips",
		FFprobePath:          "ffprobe",
		WhisperBaseURL:       "https://api.openai.com/v1",
		WhisperModel:         "whisper-1",
		OpenRouterBaseURL:    "https://openrouter.ai",
		ChunkWindowSeconds:   chunker.DefaultWindowSeconds,
		ChunkOverlapSeconds:  chunker.DefaultOverlapSeconds,
		TranscribeTimeoutSec: 300,
		CompleteTimeoutSec:   90,
		RequestTimeoutSec:    600,
	}
}

func (c Config) Validate() error {
	if c.WhisperAPIKey == "" {
		return errors.New("whisper API key is required (set WHISPER_API_KEY)")
	}
	if c.OpenRouterAPIKey == "" {
		return errors.New("openrouter API key is required (set OPENROUTER_API_KEY)")
	}
	if c.ChunkWindowSeconds <= 0 {
		return errors.New("chunk window must be > 0")
	}
	if c.ChunkOverlapSeconds < 0 || c.ChunkOverlapSeconds >= c.ChunkWindowSeconds {
		return errors.New("chunk overlap must be >= 0 and smaller than the window")
	}
	return openrouter.ValidateBaseURL(c.OpenRouterBaseURL, c.OpenRouterAllowedHosts)
}

// Build creates the adapter set and usecase from configuration. It also
// ensures the working directories exist.
func Build(cfg Config, log *slog.Logger) (usecase.Usecase, ports.VideoTool, error) {
	if log == nil {
		log = slog.Default()
	}
	for _, dir := range []string{cfg.UploadsDir, cfg.ClipsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return usecase.Usecase{}, nil, fmt.Errorf("create %s: %w", dir, err)
		}
	}

	video := ffmpeg.New(cfg.FFprobePath)
	asr := whisperapi.New(cfg.WhisperBaseURL, cfg.WhisperAPIKey, cfg.WhisperModel,
		whisperapi.WithTimeout(cfg.TranscribeTimeout()))
	llm := openrouter.New(cfg.OpenRouterAPIKey, cfg.OpenRouterModel, cfg.OpenRouterBaseURL,
		openrouter.WithTimeout(cfg.CompleteTimeout()))

	uc := usecase.New(usecase.Deps{
		Video: video,
		ASR:   asr,
		LLM:   llm,
		Names: ids.UUID{},
		Log:   log,
	})
	return uc, video, nil
}

// adapters must satisfy their ports
var (
	_ ports.VideoTool   = (*ffmpeg.Adapter)(nil)
	_ ports.Transcriber = (*whisperapi.Adapter)(nil)
	_ ports.Completer   = (*openrouter.Adapter)(nil)
	_ ports.Namer       = ids.UUID{}
)
