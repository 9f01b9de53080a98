// Package chunker splits a timed transcript into overlapping windows sized
// for a bounded-context model call.
package chunker

import (
	"strings"

	"clipd/internal/types"
)

const (
	DefaultWindowSeconds  = 180.0
	DefaultOverlapSeconds = 20.0
)

// Chunk windows segments into chunks of roughly windowSec seconds each,
// overlapping the previous chunk by roughly overlapSec seconds. Windows end
// on full segment boundaries, so a chunk may overrun the nominal window size
// rather than cut a segment in half. Segments are shared with the caller,
// not copied.
func Chunk(segments []types.Segment, windowSec, overlapSec float64) []types.Chunk {
	if len(segments) == 0 {
		return nil
	}
	if windowSec <= 0 {
		windowSec = DefaultWindowSeconds
	}
	if overlapSec < 0 || overlapSec >= windowSec {
		overlapSec = 0
	}

	var out []types.Chunk
	cursor := 0
	for cursor < len(segments) {
		target := segments[cursor].Start + windowSec

		end := cursor
		for end < len(segments)-1 && segments[end].End < target {
			end++
		}

		members := segments[cursor : end+1]
		text := joinSegmentText(members)
		if text != "" {
			out = append(out, types.Chunk{
				Text:     text,
				Segments: members,
				Start:    members[0].Start,
				End:      members[len(members)-1].End,
			})
		}

		// Step back by the overlap, but always make forward progress so the
		// loop terminates even on degenerate timestamps.
		next := nextCursor(segments, segments[end].End-overlapSec)
		if next <= cursor {
			next = end + 1
		}
		cursor = next
	}
	return out
}

// nextCursor returns the index of the earliest segment starting at or after
// minStart, or len(segments) if none does.
func nextCursor(segments []types.Segment, minStart float64) int {
	for i, s := range segments {
		if s.Start >= minStart {
			return i
		}
	}
	return len(segments)
}

func joinSegmentText(segments []types.Segment) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if t := strings.TrimSpace(s.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}
