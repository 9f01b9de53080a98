package extract

import (
	"testing"

	"clipd/internal/types"
)

func TestParse(t *testing.T) {
	t.Parallel()

	one := types.Candidate{Title: "X", Description: "d", Start: 1, End: 20, Reason: "r"}

	cases := []struct {
		name string
		raw  string
		want []types.Candidate
	}{
		{
			name: "plain array",
			raw:  `[{"title":"X","description":"d","startTimeSeconds":1,"endTimeSeconds":20,"reason":"r"}]`,
			want: []types.Candidate{one},
		},
		{
			name: "array wrapped in prose",
			raw:  "Here you go:\n[{\"title\":\"X\",\"description\":\"d\",\"startTimeSeconds\":1,\"endTimeSeconds\":20,\"reason\":\"r\"}]",
			want: []types.Candidate{one},
		},
		{
			name: "array in code fence",
			raw:  "```json\n[{\"title\":\"X\",\"description\":\"d\",\"startTimeSeconds\":1,\"endTimeSeconds\":20,\"reason\":\"r\"}]\n```",
			want: []types.Candidate{one},
		},
		{
			name: "single object wrapped in list",
			raw:  `{"title":"X","description":"d","startTimeSeconds":1,"endTimeSeconds":20,"reason":"r"}`,
			want: []types.Candidate{one},
		},
		{
			name: "empty string",
			raw:  "",
			want: nil,
		},
		{
			name: "whitespace only",
			raw:  "   \n\t ",
			want: nil,
		},
		{
			name: "empty array",
			raw:  "[]",
			want: []types.Candidate{},
		},
		{
			name: "garbage",
			raw:  "sorry, I can't help with that",
			want: nil,
		},
		{
			name: "wrong shape",
			raw:  `{"clips": 3}`,
			want: nil,
		},
		{
			name: "scalar",
			raw:  "42",
			want: nil,
		},
		{
			name: "element with wrong field type dropped",
			raw: `[{"title":"X","description":"d","startTimeSeconds":"one","endTimeSeconds":20,"reason":"r"},` +
				`{"title":"X","description":"d","startTimeSeconds":1,"endTimeSeconds":20,"reason":"r"}]`,
			want: []types.Candidate{one},
		},
		{
			name: "element with missing field dropped",
			raw:  `[{"title":"X","startTimeSeconds":1,"endTimeSeconds":20}]`,
			want: []types.Candidate{},
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := Parse(tc.raw)
			if len(got) != len(tc.want) {
				t.Fatalf("expected %d candidates, got %d: %v", len(tc.want), len(got), got)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("candidate %d: expected %+v, got %+v", i, tc.want[i], got[i])
				}
			}
		})
	}
}

func TestBoundsFor(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		target float64
		want   Bounds
	}{
		{name: "absent", target: 0, want: Bounds{Min: 10, Max: 60}},
		{name: "negative treated as absent", target: -3, want: Bounds{Min: 10, Max: 60}},
		{name: "typical", target: 30, want: Bounds{Min: 25, Max: 45}},
		{name: "floored min", target: 7, want: Bounds{Min: 5, Max: 22}},
		{name: "capped max", target: 110, want: Bounds{Min: 105, Max: 120}},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := BoundsFor(tc.target); got != tc.want {
				t.Fatalf("expected %+v, got %+v", tc.want, got)
			}
		})
	}
}
