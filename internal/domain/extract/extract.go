// Package extract turns transcript chunks into validated clip candidates by
// prompting a completion model and defensively parsing its output.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"clipd/internal/ports"
	"clipd/internal/types"
)

// Bounds is the allowed clip duration range in seconds.
type Bounds struct {
	Min float64
	Max float64
}

const (
	defaultMinDuration = 10.0
	defaultMaxDuration = 60.0

	floorMinDuration = 5.0
	ceilMaxDuration  = 120.0
)

// BoundsFor derives duration bounds from an optional requested target
// duration. Zero or negative target means no request was made.
func BoundsFor(target float64) Bounds {
	if target <= 0 {
		return Bounds{Min: defaultMinDuration, Max: defaultMaxDuration}
	}
	b := Bounds{Min: target - 5, Max: target + 15}
	if b.Min < floorMinDuration {
		b.Min = floorMinDuration
	}
	if b.Max > ceilMaxDuration {
		b.Max = ceilMaxDuration
	}
	return b
}

func (b Bounds) contains(d float64) bool { return d >= b.Min && d <= b.Max }

type Extractor struct {
	llm ports.Completer
	log *slog.Logger
}

func New(llm ports.Completer, log *slog.Logger) *Extractor {
	if log == nil {
		log = slog.Default()
	}
	return &Extractor{llm: llm, log: log}
}

// Extract proposes candidates for one chunk. A model failure or unparseable
// response never fails the caller; the chunk just contributes no candidates.
func (e *Extractor) Extract(ctx context.Context, chunk types.Chunk, b Bounds) []types.Candidate {
	raw, err := e.llm.Complete(ctx, systemPrompt, userPrompt(chunk, b))
	if err != nil {
		e.log.Warn("completion failed for chunk, skipping",
			"chunk_start", chunk.Start, "chunk_end", chunk.End, "error", err)
		return nil
	}

	cands := Parse(raw)
	kept := Filter(cands, b, chunk)
	if len(cands) > 0 && len(kept) == 0 {
		e.log.Warn("all parsed candidates failed validation",
			"chunk_start", chunk.Start, "chunk_end", chunk.End, "parsed", len(cands))
	}
	return kept
}

// Filter keeps candidates with sane timestamps: start before end, duration
// within bounds, and both endpoints inside the chunk's span.
func Filter(cands []types.Candidate, b Bounds, chunk types.Chunk) []types.Candidate {
	out := make([]types.Candidate, 0, len(cands))
	for _, c := range cands {
		if c.Start >= c.End {
			continue
		}
		if !b.contains(c.Duration()) {
			continue
		}
		if c.Start < chunk.Start || c.End > chunk.End {
			continue
		}
		out = append(out, c)
	}
	return out
}

const systemPrompt = "You are a video editor assistant. You find short, " +
	"self-contained highlight moments in transcripts. You respond with " +
	"strictly valid JSON and nothing else: no markdown, no commentary."

func userPrompt(chunk types.Chunk, b Bounds) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Below is a transcript excerpt covering %.1fs to %.1fs of a video.\n\n", chunk.Start, chunk.End)
	sb.WriteString("Transcript text:\n")
	sb.WriteString(chunk.Text)
	sb.WriteString("\n\nTimed segments:\n")
	for _, s := range chunk.Segments {
		fmt.Fprintf(&sb, "[%.1f - %.1f] %s\n", s.Start, s.End, strings.TrimSpace(s.Text))
	}
	fmt.Fprintf(&sb,
		"\nPropose 1-2 highlight clips from this excerpt, or none if nothing qualifies. "+
			"Each clip must be a self-contained moment between %.0f and %.0f seconds long, "+
			"with timestamps taken from the timed segments above.\n"+
			"Respond with a JSON array of objects with exactly these keys: "+
			"title, description, startTimeSeconds, endTimeSeconds, reason. "+
			"Respond with [] if nothing qualifies.", b.Min, b.Max)
	return sb.String()
}
