// Package usecase orchestrates the clip detection pipeline: audio
// extraction, transcription, chunked candidate extraction, deduplication,
// count reconciliation, and clip materialization.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"clipd/internal/domain/chunker"
	"clipd/internal/domain/dedupe"
	"clipd/internal/domain/extract"
	"clipd/internal/domain/reconcile"
	"clipd/internal/ports"
	"clipd/internal/types"
)

type Deps struct {
	Video ports.VideoTool
	ASR   ports.Transcriber
	LLM   ports.Completer
	Names ports.Namer
	Log   *slog.Logger
}

type Usecase struct{ d Deps }

func New(d Deps) Usecase {
	if d.Log == nil {
		d.Log = slog.Default()
	}
	return Usecase{d: d}
}

type DetectInput struct {
	// MediaPath is the uploaded source video.
	MediaPath string
	Policy    types.Policy

	// WorkDir holds intermediate artifacts (extracted audio).
	WorkDir string
	// ClipsDir receives cut clips; ClipBaseURL prefixes their download URLs.
	ClipsDir    string
	ClipBaseURL string

	WindowSeconds  float64
	OverlapSeconds float64
}

type DetectResult struct {
	Transcript types.Transcript
	Clips      []types.Selection
	// Warning is set when a positive clip count was requested but no viable
	// candidates were found; this is not an error.
	Warning string
}

// Detect runs the whole pipeline for one video. Chunk-level completion
// failures and per-clip cut failures degrade the result instead of aborting;
// transcription failure aborts because nothing downstream can run without a
// transcript.
func (u Usecase) Detect(ctx context.Context, in DetectInput) (DetectResult, error) {
	if !in.Policy.Mode.Valid() {
		return DetectResult{}, fmt.Errorf("%w: unknown clip option %q", ErrBadInput, in.Policy.Mode)
	}
	if _, err := os.Stat(in.MediaPath); err != nil {
		return DetectResult{}, fmt.Errorf("%w: source media %s", ErrNotFound, filepath.Base(in.MediaPath))
	}

	wav := filepath.Join(in.WorkDir, "audio.wav")
	if err := u.d.Video.ExtractAudio(ctx, in.MediaPath, wav); err != nil {
		return DetectResult{}, fmt.Errorf("extract audio: %w", err)
	}

	tr, err := u.d.ASR.Transcribe(ctx, wav)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return DetectResult{}, fmt.Errorf("transcription: %w", ErrTimeout)
		}
		return DetectResult{}, fmt.Errorf("transcription: %w", err)
	}
	u.d.Log.Info("transcription complete",
		"segments", len(tr.Segments), "duration_sec", tr.Duration())

	chunks := chunker.Chunk(tr.Segments, in.WindowSeconds, in.OverlapSeconds)
	bounds := extract.BoundsFor(in.Policy.Duration)
	extractor := extract.New(u.d.LLM, u.d.Log)

	// Chunks are processed one at a time, in order. A chunk that fails or
	// times out contributes nothing; the rest still run.
	var candidates []types.Candidate
	for _, ch := range chunks {
		candidates = append(candidates, extractor.Extract(ctx, ch, bounds)...)
	}
	u.d.Log.Info("candidate extraction complete",
		"chunks", len(chunks), "candidates", len(candidates))

	unique := dedupe.Dedupe(candidates)
	final := reconcile.Reconcile(unique, in.Policy, bounds, tr.Segments)

	res := DetectResult{Transcript: tr}
	if len(final) == 0 {
		if requested := in.Policy.Count.N; requested > 0 || in.Policy.Count.Max || in.Policy.Mode == types.ModeAIPick {
			res.Warning = "no viable clips were found in this video"
			u.d.Log.Warn("no viable clips", "candidates", len(candidates), "unique", len(unique))
		}
		return res, nil
	}

	res.Clips = u.materialize(ctx, final, in)
	return res, nil
}

// materialize cuts each selected clip and attaches its download URL. A
// failed cut drops that clip only.
func (u Usecase) materialize(ctx context.Context, clips []types.Candidate, in DetectInput) []types.Selection {
	out := make([]types.Selection, 0, len(clips))
	for _, clip := range clips {
		name := clipFileName(clip.Title, u.d.Names.UniqueSuffix(), filepath.Ext(in.MediaPath))
		outPath := filepath.Join(in.ClipsDir, name)
		if err := u.d.Video.CutClip(ctx, in.MediaPath, clip.Start, clip.End, outPath); err != nil {
			u.d.Log.Warn("clip cut failed, dropping clip",
				"title", clip.Title, "start", clip.Start, "end", clip.End, "error", err)
			continue
		}
		out = append(out, types.Selection{
			Candidate:   clip,
			DownloadURL: path.Join("/", in.ClipBaseURL, name),
		})
	}
	return out
}

func clipFileName(title, suffix, ext string) string {
	if ext == "" {
		ext = ".mp4"
	}
	return sanitizeTitle(title) + "-" + suffix + ext
}

// sanitizeTitle reduces a clip title to a safe filename stem: lowercase,
// restricted to [a-z0-9._-], runs of other characters collapsed to one dash.
func sanitizeTitle(s string) string {
	var b []rune
	prevSep := false
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z':
			r += 'a' - 'A'
			fallthrough
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '_':
			b = append(b, r)
			prevSep = false
		default:
			if !prevSep {
				b = append(b, '-')
				prevSep = true
			}
		}
	}
	out := string(b)
	for len(out) > 0 && (out[0] == '-' || out[0] == '.') {
		out = out[1:]
	}
	for len(out) > 0 && (out[len(out)-1] == '-' || out[len(out)-1] == '.') {
		out = out[:len(out)-1]
	}
	if out == "" {
		out = "clip"
	}
	return out
}
