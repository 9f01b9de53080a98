// Package ports defines the interfaces the pipeline needs from its external
// collaborators. Adapters live in subpackages; the domain and usecase layers
// depend only on these interfaces.
package ports

import (
	"context"

	"clipd/internal/types"
)

// Transcriber converts an audio file into a timed transcript.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (types.Transcript, error)
}

// Completer runs one chat completion and returns the raw assistant text.
// Callers own all parsing; the returned string may be malformed, wrapped in
// prose, or empty.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// VideoTool wraps the media toolchain.
type VideoTool interface {
	ExtractAudio(ctx context.Context, inPath, outWav string) error
	CutClip(ctx context.Context, inPath string, startSec, endSec float64, outPath string) error
	ProbeDuration(ctx context.Context, inPath string) (float64, error)
}

// Namer produces collision-free name suffixes. Injected so tests control
// uniqueness deterministically.
type Namer interface {
	UniqueSuffix() string
}
