// Package reconcile turns a deduplicated candidate set into the final clip
// list matching a user-requested count, splitting or synthesizing clips when
// the model under-produced.
package reconcile

import (
	"fmt"
	"math"
	"sort"

	"clipd/internal/domain/extract"
	"clipd/internal/types"
)

const (
	// aiPickMax caps automatic selection when the user delegated the count.
	aiPickMax = 3

	// minFinalDuration is a hard floor: nothing shorter than this is ever
	// returned, regardless of how it was produced.
	minFinalDuration = 2.0

	// splitFactor gates the split pass: only clips at least this many times
	// the minimum duration are worth halving.
	splitFactor = 1.5
)

// Reconcile selects the final clips. Candidates must be time-sorted (the
// deduplicator's output). Segments anchor filler synthesis; the video
// duration is derived from them, never from file metadata.
func Reconcile(unique []types.Candidate, pol types.Policy, b extract.Bounds, segments []types.Segment) []types.Candidate {
	candidates := filterDuration(unique, b)
	desired := desiredCount(pol, len(candidates))

	total := 0.0
	if len(segments) > 0 {
		total = segments[len(segments)-1].End
	}

	var out []types.Candidate
	switch {
	case desired == 0:
		out = candidates
	case len(candidates) == 0:
		// Never fabricate clips when the model produced nothing at all.
		return nil
	case len(candidates) >= desired:
		out = candidates[:desired]
	default:
		out = splitToMeetCount(candidates, desired, b.Min)
		if len(out) < desired && total > 0 {
			out = append(out, fillers(out, desired-len(out), pol, b, segments, total)...)
			out = sortByStart(out)
		}
		if len(out) > desired {
			out = out[:desired]
		}
	}

	return finalFilter(out, total)
}

func desiredCount(pol types.Policy, available int) int {
	if pol.Mode == types.ModeAIPick {
		return min(available, aiPickMax)
	}
	if pol.Count.Max {
		return available
	}
	return pol.Count.N
}

func filterDuration(cands []types.Candidate, b extract.Bounds) []types.Candidate {
	out := make([]types.Candidate, 0, len(cands))
	for _, c := range cands {
		d := c.Duration()
		if d < b.Min || d > b.Max {
			continue
		}
		out = append(out, c)
	}
	return out
}

// splitToMeetCount repeatedly halves the longest splittable clip until the
// desired count is reached, no splittable clip remains, or the attempt
// budget runs out. Each pass produces a fresh sorted slice.
func splitToMeetCount(candidates []types.Candidate, desired int, minDuration float64) []types.Candidate {
	out := sortByStart(candidates)
	for budget := desired * 3; len(out) < desired && budget > 0; budget-- {
		idx := longestSplittable(out, minDuration)
		if idx < 0 {
			break
		}
		out = splitAt(out, idx, minDuration)
	}
	return out
}

func longestSplittable(cands []types.Candidate, minDuration float64) int {
	idx, best := -1, 0.0
	for i, c := range cands {
		if d := c.Duration(); d >= splitFactor*minDuration && d > best {
			idx, best = i, d
		}
	}
	return idx
}

func splitAt(cands []types.Candidate, idx int, minDuration float64) []types.Candidate {
	orig := cands[idx]
	mid := orig.Start + orig.Duration()/2

	halves := make([]types.Candidate, 0, 2)
	for _, h := range []struct {
		suffix     string
		start, end float64
	}{
		{suffix: " (Part A)", start: orig.Start, end: mid},
		{suffix: " (Part B)", start: mid, end: orig.End},
	} {
		part := orig
		part.Title = orig.Title + h.suffix
		part.Reason = orig.Reason + " (Split to meet count)"
		part.Start = h.start
		part.End = h.end
		if part.Duration() < minDuration/2 {
			continue
		}
		halves = append(halves, part)
	}

	out := make([]types.Candidate, 0, len(cands)+1)
	out = append(out, cands[:idx]...)
	out = append(out, halves...)
	out = append(out, cands[idx+1:]...)
	return sortByStart(out)
}

// fillers synthesizes sequential auto-generated clips after the last known
// clip, snapping window edges to segment boundaries when one exists.
func fillers(existing []types.Candidate, n int, pol types.Policy, b extract.Bounds, segments []types.Segment, total float64) []types.Candidate {
	span := pol.Duration
	if span <= 0 {
		span = b.Max
	}

	cursor := 0.0
	if len(existing) > 0 {
		last := existing[0]
		for _, c := range existing[1:] {
			if c.End > last.End {
				last = c
			}
		}
		cursor = last.End
	} else if len(segments) > 0 {
		cursor = segments[0].Start
	}

	out := make([]types.Candidate, 0, n)
	for i := 1; len(out) < n; i++ {
		if cursor >= total || total-cursor < b.Min/2 {
			break
		}
		start := snapStart(segments, cursor)
		end := snapEnd(segments, math.Min(start+span, total), total)
		if end <= start {
			break
		}
		out = append(out, types.Candidate{
			Title:       fmt.Sprintf("Auto-Generated Clip %d", i),
			Description: "Automatically selected to meet the requested clip count.",
			Start:       start,
			End:         end,
			Reason:      "Synthesized to meet the requested clip count.",
		})
		cursor = end
	}
	return out
}

// snapStart extends start forward to the next segment start, if any.
func snapStart(segments []types.Segment, start float64) float64 {
	for _, s := range segments {
		if s.Start >= start {
			return s.Start
		}
	}
	return start
}

// snapEnd extends end forward to the next segment end, else the video end.
func snapEnd(segments []types.Segment, end, total float64) float64 {
	for _, s := range segments {
		if s.End >= end {
			return s.End
		}
	}
	return total
}

// finalFilter drops anything with broken or out-of-range timestamps and
// enforces the hard duration floor.
func finalFilter(cands []types.Candidate, total float64) []types.Candidate {
	out := make([]types.Candidate, 0, len(cands))
	for _, c := range cands {
		if c.Start < 0 || c.End <= c.Start {
			continue
		}
		if total > 0 && c.End > total {
			continue
		}
		if c.Duration() < minFinalDuration {
			continue
		}
		out = append(out, c)
	}
	return out
}

func sortByStart(cands []types.Candidate) []types.Candidate {
	out := make([]types.Candidate, len(cands))
	copy(out, cands)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}
