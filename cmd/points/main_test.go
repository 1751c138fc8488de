package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testRoster = `teams: [green]
participants:
  - id: 6f1c1f9e-8d3c-4a43-9a4b-0d6f3b6c1a01
    name: Admin
    operator: true
  - id: 6f1c1f9e-8d3c-4a43-9a4b-0d6f3b6c1a02
    name: Alice
    team: red
  - id: 6f1c1f9e-8d3c-4a43-9a4b-0d6f3b6c1a03
    name: Bob
    team: blue
    tags: [vip]
`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func setupProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "points.yaml")

	if _, err := execute(t, "init", "--config", cfgPath, "--dsn", "sqlite://"+filepath.Join(dir, "points.db")); err != nil {
		t.Fatalf("init: %v", err)
	}
	rosterPath := filepath.Join(dir, "roster.yaml")
	if err := os.WriteFile(rosterPath, []byte(testRoster), 0o600); err != nil {
		t.Fatalf("writing roster: %v", err)
	}
	if _, err := execute(t, "roster", "import", rosterPath, "--config", cfgPath); err != nil {
		t.Fatalf("roster import: %v", err)
	}
	return cfgPath
}

func TestInit_RefusesToOverwrite(t *testing.T) {
	cfgPath := setupProject(t)
	if _, err := execute(t, "init", "--config", cfgPath); err == nil {
		t.Fatalf("expected error when points.yaml exists")
	}
}

func TestAddShowUndo(t *testing.T) {
	cfgPath := setupProject(t)
	common := []string{"--config", cfgPath, "--color", "never"}

	out, err := execute(t, append([]string{"add", "10", "teams:red", "--as", "Admin"}, common...)...)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !strings.Contains(out, "Added 10 points to: Alice") {
		t.Fatalf("expected add confirmation, got %q", out)
	}

	out, err = execute(t, append([]string{"show", "--as", "Alice"}, common...)...)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if !strings.Contains(out, "Total: 10 points") {
		t.Fatalf("expected total of 10, got %q", out)
	}

	if _, err := execute(t, append([]string{"undo", "--as", "Admin"}, common...)...); err != nil {
		t.Fatalf("undo: %v", err)
	}
	out, err = execute(t, append([]string{"show", "--as", "Alice"}, common...)...)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if !strings.Contains(out, "Total: 0 points") {
		t.Fatalf("expected total of 0 after undo, got %q", out)
	}
}

func TestAdd_Rejected(t *testing.T) {
	cfgPath := setupProject(t)

	out, err := execute(t, "add", "0", "players:all", "--as", "Admin", "--config", cfgPath, "--color", "never")
	if !errors.Is(err, errReported) {
		t.Fatalf("expected reported failure, got %v", err)
	}
	if !strings.Contains(out, "Points must be greater than 0.") {
		t.Fatalf("expected min point message, got %q", out)
	}
}

func TestTestAndComplete(t *testing.T) {
	cfgPath := setupProject(t)

	out, err := execute(t, "test", "players:all", "tags-filter:!vip", "--as", "Admin", "--config", cfgPath, "--color", "never")
	if err != nil {
		t.Fatalf("test: %v", err)
	}
	if !strings.Contains(out, "Selected:") {
		t.Fatalf("expected selection line, got %q", out)
	}

	out, err = execute(t, "complete", "test", "teams:g", "--config", cfgPath)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if strings.TrimSpace(out) != "teams:green" {
		t.Fatalf("expected teams:green, got %q", out)
	}
}

func TestValidate_Clean(t *testing.T) {
	cfgPath := setupProject(t)

	out, err := execute(t, "validate", "--config", cfgPath)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !strings.Contains(out, "No issues found.") {
		t.Fatalf("expected clean report, got %q", out)
	}
}

func TestOutputStyle_Invalid(t *testing.T) {
	colorMode = "sometimes"
	t.Cleanup(func() { colorMode = "auto" })
	if _, err := outputStyle(); err == nil {
		t.Fatalf("expected error for invalid colour mode")
	}
}
