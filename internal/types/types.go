package types

import (
	"encoding/json"
	"fmt"
)

// Segment is a timestamped span of transcript text. Segments come back from
// the transcription service ordered by start time and are the authoritative
// source of timing precision: model-proposed timestamps are always validated
// against them.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

type Transcript struct {
	Text     string    `json:"text"`
	Segments []Segment `json:"segments"`
}

// Duration is the total video duration as seen by the transcript. It is
// always derived from the last segment, never from file metadata.
func (t Transcript) Duration() float64 {
	if len(t.Segments) == 0 {
		return 0
	}
	return t.Segments[len(t.Segments)-1].End
}

// Chunk is a contiguous window of segments sized for one bounded-context
// model call. Segments are shared with the parent transcript, not copied;
// consumers must not mutate them.
type Chunk struct {
	Text     string
	Segments []Segment
	Start    float64
	End      float64
}

// Candidate is a clip proposal extracted from model output for one chunk.
// Times are in seconds from the start of the source video.
type Candidate struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Start       float64 `json:"startTimeSeconds"`
	End         float64 `json:"endTimeSeconds"`
	Reason      string  `json:"reason"`
}

func (c Candidate) Duration() float64 { return c.End - c.Start }

// Selection is a finally chosen clip. DownloadURL is set once the clip has
// been cut; clips whose cut failed are omitted from results entirely.
type Selection struct {
	Candidate
	DownloadURL string `json:"downloadUrl,omitempty"`
}

type ClipMode string

const (
	ModeAIPick     ClipMode = "aiPick"
	ModeUserChoice ClipMode = "userChoice"
)

func (m ClipMode) Valid() bool {
	return m == ModeAIPick || m == ModeUserChoice
}

// ClipCount is the requested number of clips: either a non-negative integer
// or the literal string "max" meaning "as many as were found".
type ClipCount struct {
	N   int
	Max bool
}

func (c *ClipCount) UnmarshalJSON(b []byte) error {
	var n int
	if err := json.Unmarshal(b, &n); err == nil {
		if n < 0 {
			return fmt.Errorf("clip count must be >= 0, got %d", n)
		}
		*c = ClipCount{N: n}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil && s == "max" {
		*c = ClipCount{Max: true}
		return nil
	}
	return fmt.Errorf("clip count must be an integer or %q, got %s", "max", string(b))
}

func (c ClipCount) MarshalJSON() ([]byte, error) {
	if c.Max {
		return json.Marshal("max")
	}
	return json.Marshal(c.N)
}

// Policy is the user-facing clip selection request.
type Policy struct {
	Mode     ClipMode  `json:"clipOption"`
	Count    ClipCount `json:"desiredClipCount"`
	Duration float64   `json:"desiredClipDuration,omitempty"`
}
