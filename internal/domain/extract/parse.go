package extract

import (
	"encoding/json"
	"regexp"
	"strings"

	"clipd/internal/types"
)

// Model output is unreliable: it may wrap the JSON in prose or code fences,
// return a bare object instead of an array, or return garbage. The parse
// chain degrades to an empty candidate list instead of failing.
var arrayOfObjectsRE = regexp.MustCompile(`(?s)\[\s*\{.*\}\s*\]`)

// rawClip mirrors the shape the prompt asks for. Pointer fields distinguish
// a missing or wrongly-typed key from a zero value.
type rawClip struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Start       *float64 `json:"startTimeSeconds"`
	End         *float64 `json:"endTimeSeconds"`
	Reason      *string  `json:"reason"`
}

func (r rawClip) candidate() (types.Candidate, bool) {
	if r.Title == nil || r.Description == nil || r.Start == nil || r.End == nil || r.Reason == nil {
		return types.Candidate{}, false
	}
	return types.Candidate{
		Title:       strings.TrimSpace(*r.Title),
		Description: strings.TrimSpace(*r.Description),
		Start:       *r.Start,
		End:         *r.End,
		Reason:      strings.TrimSpace(*r.Reason),
	}, true
}

// Parse turns a raw completion into candidates, applying the coercion rules:
// blank input reads as an empty array; the first array-of-objects substring
// is preferred over the whole body; a single well-formed object is wrapped
// in a one-element list; anything else coerces to empty. Elements with
// missing or wrongly-typed fields are dropped, not fatal.
func Parse(raw string) []types.Candidate {
	body := strings.TrimSpace(raw)
	if body == "" {
		return nil
	}
	body = stripFences(body)
	if m := arrayOfObjectsRE.FindString(body); m != "" {
		body = m
	}

	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(body), &elems); err == nil {
		out := make([]types.Candidate, 0, len(elems))
		for _, e := range elems {
			var rc rawClip
			if err := json.Unmarshal(e, &rc); err != nil {
				continue
			}
			if c, ok := rc.candidate(); ok {
				out = append(out, c)
			}
		}
		return out
	}

	var rc rawClip
	if err := json.Unmarshal([]byte(body), &rc); err == nil {
		if c, ok := rc.candidate(); ok {
			return []types.Candidate{c}
		}
	}
	return nil
}

func stripFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if i := strings.Index(s, "\n"); i >= 0 {
		s = s[i+1:]
	}
	if j := strings.LastIndex(s, "```"); j >= 0 {
		s = s[:j]
	}
	return strings.TrimSpace(s)
}
