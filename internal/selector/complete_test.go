package selector

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestComplete(t *testing.T) {
	tests := []struct {
		name     string
		tokens   []string
		expected []string
	}{
		{name: "nothing typed", tokens: nil, expected: []string{"players", "teams", "teams-filter", "tags", "tags-filter"}},
		{name: "category prefix", tokens: []string{"te"}, expected: []string{"teams", "teams-filter"}},
		{name: "category prefix ignores case", tokens: []string{"TA"}, expected: []string{"tags", "tags-filter"}},
		{name: "unknown category", tokens: []string{"bogus:x"}, expected: []string{}},
		{
			name:     "empty value",
			tokens:   []string{"teams:"},
			expected: []string{"teams:all", "teams:blue", "teams:green", "teams:red", "teams:!"},
		},
		{name: "partial name", tokens: []string{"players:A"}, expected: []string{"players:Alice"}},
		{name: "inverted partial", tokens: []string{"players:all,!C"}, expected: []string{"players:all,!Carol"}},
		{
			name:     "inversion only",
			tokens:   []string{"tags:!"},
			expected: []string{"tags:!all", "tags:!banned", "tags:!builder", "tags:!vip"},
		},
		{
			name:   "complete item",
			tokens: []string{"teams-filter:red"},
			expected: []string{
				"teams-filter:red",
				"teams-filter:red,all", "teams-filter:red,blue", "teams-filter:red,green", "teams-filter:red,red",
			},
		},
		{name: "only last token", tokens: []string{"players:all", "tags:b"}, expected: []string{"tags:banned", "tags:builder"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Complete(tt.tokens, newWorld())
			if diff := cmp.Diff(tt.expected, got); diff != "" {
				t.Errorf("Complete(%q) mismatch (-want +got):\n%s", tt.tokens, diff)
			}
		})
	}
}
