package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"clipd/internal/types"
	"clipd/internal/usecase"
)

type uploadResponse struct {
	UploadID        string  `json:"uploadId"`
	Filename        string  `json:"filename"`
	DurationSeconds float64 `json:"durationSeconds"`
}

type detectRequest struct {
	UploadID string `json:"uploadId"`
	types.Policy
}

type detectResponse struct {
	Transcript string            `json:"transcript"`
	Segments   []types.Segment   `json:"segments"`
	Clips      []types.Selection `json:"clips"`
	Warning    string            `json:"warning,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Upload IDs are the stored filename: a uuid plus the original extension.
var (
	uploadIDRE = regexp.MustCompile(`^[a-f0-9-]{36}\.[a-z0-9]{1,8}$`)
	extRE      = regexp.MustCompile(`^\.[a-z0-9]{1,8}$`)
)

func (s *Server) handleUpload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxUploadBytes)

	file, err := c.FormFile("video")
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "a video file is required in the 'video' form field"})
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !extRE.MatchString(ext) {
		ext = ".mp4"
	}
	id := uuid.NewString() + ext
	dst := filepath.Join(s.cfg.UploadsDir, id)

	if err := c.SaveUploadedFile(file, dst); err != nil {
		s.log.Error("save upload failed", "error", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to store upload"})
		return
	}

	probeCtx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()
	duration, err := s.video.ProbeDuration(probeCtx, dst)
	if err != nil {
		_ = os.Remove(dst)
		s.log.Warn("rejecting unreadable upload", "filename", file.Filename, "error", err)
		c.JSON(http.StatusBadRequest, errorResponse{Error: "uploaded file is not a readable media file"})
		return
	}

	s.log.Info("upload stored", "upload_id", id, "duration_sec", duration)
	c.JSON(http.StatusOK, uploadResponse{
		UploadID:        id,
		Filename:        file.Filename,
		DurationSeconds: duration,
	})
}

func (s *Server) handleDetect(c *gin.Context) {
	var req detectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request: " + err.Error()})
		return
	}
	if !uploadIDRE.MatchString(req.UploadID) {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid upload id"})
		return
	}
	if !req.Mode.Valid() {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "clipOption must be \"aiPick\" or \"userChoice\""})
		return
	}

	workDir, err := os.MkdirTemp("", "clipd-detect-*")
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal failure"})
		return
	}
	defer os.RemoveAll(workDir)

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.cfg.RequestTimeout)
	defer cancel()

	res, err := s.det.Detect(ctx, usecase.DetectInput{
		MediaPath:      filepath.Join(s.cfg.UploadsDir, req.UploadID),
		Policy:         req.Policy,
		WorkDir:        workDir,
		ClipsDir:       s.cfg.ClipsDir,
		ClipBaseURL:    s.cfg.ClipBaseURL,
		WindowSeconds:  s.cfg.WindowSeconds,
		OverlapSeconds: s.cfg.OverlapSeconds,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, detectResponse{
		Transcript: res.Transcript.Text,
		Segments:   res.Transcript.Segments,
		Clips:      res.Clips,
		Warning:    res.Warning,
	})
}

// respondError maps pipeline-aborting errors to distinct statuses so clients
// can tell bad input, a vanished upload, a timeout, and a genuine failure
// apart.
func (s *Server) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrBadInput):
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, usecase.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, usecase.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, errorResponse{Error: "processing timed out"})
	default:
		s.log.Error("detect failed", "error", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal failure"})
	}
}
