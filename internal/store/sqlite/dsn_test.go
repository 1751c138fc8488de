package sqlite

import (
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseDSN(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		path       string
		memory     bool
		txlock     string
		extraPrags []string
		wantErr    bool
	}{
		{name: "memory", input: "sqlite://:memory:", path: ":memory:", memory: true, txlock: "immediate"},
		{name: "absolute path", input: "sqlite:///var/lib/points.db", path: "/var/lib/points.db", txlock: "immediate"},
		{name: "relative path", input: "sqlite://points.db", path: "./points.db", txlock: "immediate"},
		{name: "dot relative path", input: "sqlite://./data/points.db", path: "./data/points.db", txlock: "immediate"},
		{name: "escaped path", input: "sqlite://my%20points.db", path: "./my points.db", txlock: "immediate"},
		{name: "txlock kept", input: "sqlite://points.db?_txlock=deferred", path: "./points.db", txlock: "deferred"},
		{name: "pragma appended", input: "sqlite://points.db?_pragma=synchronous(NORMAL)", path: "./points.db", txlock: "immediate", extraPrags: []string{"synchronous(NORMAL)"}},
		{name: "wrong scheme", input: "postgres://localhost/points", wantErr: true},
		{name: "missing path", input: "sqlite://", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDSN(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			path, query, ok := strings.Cut(got.path, "?")
			if !ok {
				t.Fatalf("expected connection parameters in %q", got.path)
			}
			if path != tt.path || got.memory != tt.memory {
				t.Fatalf("expected path %q memory %v, got %q memory %v", tt.path, tt.memory, path, got.memory)
			}

			params, err := url.ParseQuery(query)
			if err != nil {
				t.Fatalf("parsing query %q: %v", query, err)
			}
			if params.Get("_txlock") != tt.txlock {
				t.Fatalf("expected _txlock %q, got %q", tt.txlock, params.Get("_txlock"))
			}
			pragmas := []string{"busy_timeout(30000)", "foreign_keys(1)"}
			if !tt.memory {
				pragmas = append(pragmas, "journal_mode(WAL)")
			}
			pragmas = append(pragmas, tt.extraPrags...)
			if diff := cmp.Diff(pragmas, params["_pragma"]); diff != "" {
				t.Errorf("pragmas mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
