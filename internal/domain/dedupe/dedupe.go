// Package dedupe merges per-chunk clip candidates into a time-ordered set
// without near-duplicates. Overlapping chunk windows routinely produce the
// same moment twice with slightly different timestamps.
package dedupe

import (
	"math"
	"sort"

	"clipd/internal/types"
)

// OverlapThreshold is the slack, in seconds, under which two candidates are
// considered the same moment.
const OverlapThreshold = 5.0

// Dedupe filters candidates in arrival order, keeping the first of any
// duplicate pair, then sorts survivors by start time. A candidate duplicates
// an accepted clip when their starts are within the threshold, or when it
// nests inside the accepted clip's span extended by the threshold. First
// seen wins even if a later candidate is timed more precisely; n is small
// enough that the quadratic scan is fine.
func Dedupe(cands []types.Candidate) []types.Candidate {
	unique := make([]types.Candidate, 0, len(cands))
	for _, c := range cands {
		if !isDuplicate(unique, c) {
			unique = append(unique, c)
		}
	}
	sort.SliceStable(unique, func(i, j int) bool {
		return unique[i].Start < unique[j].Start
	})
	return unique
}

func isDuplicate(accepted []types.Candidate, c types.Candidate) bool {
	for _, u := range accepted {
		if math.Abs(c.Start-u.Start) < OverlapThreshold {
			return true
		}
		if c.Start >= u.Start && c.End <= u.End+OverlapThreshold {
			return true
		}
	}
	return false
}
