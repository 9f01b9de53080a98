// Package ffmpeg drives the media toolchain: audio extraction for
// transcription, stream-copy clip cutting, and duration probing.
package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	ffmpeggo "github.com/u2takey/ffmpeg-go"
)

type Adapter struct {
	ffprobe string
}

func New(ffprobePath string) *Adapter {
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Adapter{ffprobe: ffprobePath}
}

// ExtractAudio writes a mono 16kHz wav, the input shape speech-to-text
// models expect.
func (a *Adapter) ExtractAudio(ctx context.Context, inPath, outWav string) error {
	stream := ffmpeggo.Input(inPath).
		Output(outWav, ffmpeggo.KwArgs{
			"map": "0:a",
			"ac":  1,
			"ar":  16000,
			"f":   "wav",
		}).
		OverWriteOutput()
	if err := runStream(ctx, stream); err != nil {
		return fmt.Errorf("ffmpeg extract audio: %w", err)
	}
	return nil
}

// CutClip copies the streams between the given timestamps without
// re-encoding. A failed cut leaves no usable output the caller relies on.
func (a *Adapter) CutClip(ctx context.Context, inPath string, startSec, endSec float64, outPath string) error {
	stream := ffmpeggo.Input(inPath).
		Output(outPath, ffmpeggo.KwArgs{
			"ss": fmtSeconds(startSec),
			"to": fmtSeconds(endSec),
			"c":  "copy",
		}).
		OverWriteOutput()
	if err := runStream(ctx, stream); err != nil {
		return fmt.Errorf("ffmpeg cut clip [%s, %s]: %w", fmtSeconds(startSec), fmtSeconds(endSec), err)
	}
	return nil
}

func (a *Adapter) ProbeDuration(ctx context.Context, inPath string) (float64, error) {
	cmd := exec.CommandContext(ctx, a.ffprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		inPath,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration: %w\n%s", err, string(b))
	}
	s := strings.TrimSpace(string(b))
	sec, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", s, err)
	}
	return sec, nil
}

// runStream compiles the fluent pipeline into a command and runs it under
// the caller's context so per-call timeouts cancel ffmpeg itself.
func runStream(ctx context.Context, s *ffmpeggo.Stream) error {
	compiled := s.Compile()
	cmd := exec.CommandContext(ctx, compiled.Path, compiled.Args[1:]...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w\n%s", err, out.String())
	}
	return nil
}

func fmtSeconds(sec float64) string {
	return strconv.FormatFloat(sec, 'f', 3, 64)
}
