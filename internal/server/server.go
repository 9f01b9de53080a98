// Package server exposes the clip detection pipeline over HTTP: video
// upload, clip detection, and clip download. It is a thin layer; all
// pipeline behavior lives in usecase and the domain packages.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"clipd/internal/ports"
	"clipd/internal/usecase"
)

type Detector interface {
	Detect(ctx context.Context, in usecase.DetectInput) (usecase.DetectResult, error)
}

type Config struct {
	Addr       string
	UploadsDir string
	ClipsDir   string
	// ClipBaseURL is the route prefix clips are served under.
	ClipBaseURL string

	WindowSeconds  float64
	OverlapSeconds float64

	// RequestTimeout is the overall ceiling for one detect request.
	RequestTimeout time.Duration
	MaxUploadBytes int64
}

type Server struct {
	cfg   Config
	det   Detector
	video ports.VideoTool
	log   *slog.Logger
}

func New(cfg Config, det Detector, video ports.VideoTool, log *slog.Logger) *Server {
	if cfg.ClipBaseURL == "" {
		cfg.ClipBaseURL = "/clips"
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 10 * time.Minute
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 2 << 30
	}
	if log == nil {
		log = slog.Default()
	}
	return &Server{cfg: cfg, det: det, video: video, log: log}
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.MaxMultipartMemory = 32 << 20

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.POST("/api/upload", s.handleUpload)
	r.POST("/api/detect", s.handleDetect)
	r.Static(s.cfg.ClipBaseURL, s.cfg.ClipsDir)
	return r
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{Addr: s.cfg.Addr, Handler: s.Router()}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", "addr", s.cfg.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
