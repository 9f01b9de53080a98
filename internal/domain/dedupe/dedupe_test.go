package dedupe

import (
	"math"
	"testing"

	"clipd/internal/types"
)

func c(title string, start, end float64) types.Candidate {
	return types.Candidate{Title: title, Start: start, End: end}
}

func TestDedupe_StartProximity(t *testing.T) {
	t.Parallel()

	got := Dedupe([]types.Candidate{
		c("first", 10, 40),
		c("near start", 13, 50),
		c("far enough", 60, 90),
	})
	if len(got) != 2 {
		t.Fatalf("expected 2 unique clips, got %d: %v", len(got), got)
	}
	if got[0].Title != "first" || got[1].Title != "far enough" {
		t.Fatalf("unexpected survivors: %v", got)
	}
}

func TestDedupe_NestedWithinExtendedSpan(t *testing.T) {
	t.Parallel()

	got := Dedupe([]types.Candidate{
		c("outer", 10, 40),
		c("nested", 20, 43),         // inside [10, 40+5]
		c("past extension", 20, 46), // end outside the extended span
	})
	if len(got) != 2 {
		t.Fatalf("expected 2 unique clips, got %d: %v", len(got), got)
	}
	if got[0].Title != "outer" || got[1].Title != "past extension" {
		t.Fatalf("unexpected survivors: %v", got)
	}
}

func TestDedupe_FirstSeenWins(t *testing.T) {
	t.Parallel()

	got := Dedupe([]types.Candidate{
		c("loose", 10, 70),
		c("tighter", 12, 35),
	})
	if len(got) != 1 || got[0].Title != "loose" {
		t.Fatalf("expected the earlier-seen clip to survive, got %v", got)
	}
}

func TestDedupe_SortsByStart(t *testing.T) {
	t.Parallel()

	got := Dedupe([]types.Candidate{
		c("late", 100, 130),
		c("early", 10, 40),
		c("middle", 55, 80),
	})
	if len(got) != 3 {
		t.Fatalf("expected 3 clips, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Start < got[i-1].Start {
			t.Fatalf("output not sorted by start: %v", got)
		}
	}
}

func TestDedupe_Idempotent(t *testing.T) {
	t.Parallel()

	in := []types.Candidate{
		c("a", 0, 30),
		c("b", 2, 28),
		c("c", 40, 70),
		c("d", 42, 90),
		c("e", 120, 150),
	}
	once := Dedupe(in)
	twice := Dedupe(once)
	if len(once) != len(twice) {
		t.Fatalf("dedupe not idempotent: %d then %d", len(once), len(twice))
	}
	for i := range once {
		if once[i] != twice[i] {
			t.Fatalf("dedupe not idempotent at %d: %+v vs %+v", i, once[i], twice[i])
		}
	}

	// No two survivors start within the threshold of each other.
	for i := range once {
		for j := i + 1; j < len(once); j++ {
			if math.Abs(once[i].Start-once[j].Start) < OverlapThreshold {
				t.Fatalf("survivors %d and %d start within threshold: %v", i, j, once)
			}
		}
	}
}

func TestDedupe_Empty(t *testing.T) {
	t.Parallel()

	if got := Dedupe(nil); len(got) != 0 {
		t.Fatalf("expected empty output, got %v", got)
	}
}
