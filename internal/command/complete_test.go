package command

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestComplete(t *testing.T) {
	f := newFixture(t, nil)

	tests := []struct {
		name     string
		args     []string
		expected []string
	}{
		{name: "no args", args: nil, expected: Verbs},
		{name: "verb prefix", args: []string{"re"}, expected: []string{"redo", "reload"}},
		{name: "first digit", args: []string{"add", ""}, expected: []string{"1", "2", "3", "4", "5", "6", "7", "8", "9"}},
		{name: "next digit", args: []string{"sub", "1"}, expected: []string{"10", "11", "12", "13", "14", "15", "16", "17", "18", "19"}},
		{name: "selector after amount", args: []string{"add", "5", "tea"}, expected: []string{"teams", "teams-filter"}},
		{name: "selector values", args: []string{"test", "teams:r"}, expected: []string{"teams:red"}},
		{name: "broadcast flag", args: []string{"broadcast", "t"}, expected: []string{"true"}},
		{name: "nothing for undo", args: []string{"undo", ""}, expected: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := f.dispatcher.Complete(context.Background(), tt.args)
			if diff := cmp.Diff(tt.expected, got); diff != "" {
				t.Errorf("Complete(%q) mismatch (-want +got):\n%s", tt.args, diff)
			}
		})
	}
}
