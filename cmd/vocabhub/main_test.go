package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const deckYAML = `words:
  - word: apple
    definition: a round fruit
    examples: ["An apple a day."]
    level: 1
  - word: quixotic
    definition: unrealistically idealistic
    level: 5
`

func run(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		t.Fatalf("%v: %v\n%s", args, err, out.String())
	}
	return out.String()
}

func seededDataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("VOCABHUB_LOG_LEVEL", "error")
	deck := filepath.Join(dir, "deck.yaml")
	if err := os.WriteFile(deck, []byte(deckYAML), 0o644); err != nil {
		t.Fatalf("write deck: %v", err)
	}
	out := run(t, "", "--data-dir", dir, "--backend", "local", "deck", "import", deck)
	if !strings.Contains(out, "imported 2 words") {
		t.Fatalf("unexpected import output %q", out)
	}
	return dir
}

func TestStudyCommandRunsToCompletion(t *testing.T) {
	dir := seededDataDir(t)

	out := run(t, "\ny\n\nn\n", "--data-dir", dir, "--backend", "local", "study", "--filter", "new", "--interaction", "reveal")
	for _, want := range []string{"[1/2]", "[2/2]", "Session complete"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}

	// Both words have progress now, so none is new.
	out = run(t, "", "--data-dir", dir, "--backend", "local", "study", "--filter", "new")
	if !strings.Contains(out, "Nothing due") {
		t.Fatalf("expected empty session, got:\n%s", out)
	}
}

func TestAssessCommandReportsEstimate(t *testing.T) {
	dir := seededDataDir(t)

	out := run(t, "y\n\nn\n\n", "--data-dir", dir, "--backend", "local", "assess", "--limit", "2")
	if !strings.Contains(out, "Estimated vocabulary") {
		t.Fatalf("expected an estimate in output:\n%s", out)
	}
	if !strings.Contains(out, "recognised 1 of 2") {
		t.Fatalf("expected recognition count in output:\n%s", out)
	}
}

func TestSavedCommands(t *testing.T) {
	dir := seededDataDir(t)

	out := run(t, "", "--data-dir", dir, "--backend", "local", "saved", "list")
	if !strings.Contains(out, "no saved words") {
		t.Fatalf("unexpected output %q", out)
	}
	out = run(t, "", "--data-dir", dir, "--backend", "local", "saved", "toggle", "w-1")
	if !strings.Contains(out, "w-1 saved") {
		t.Fatalf("unexpected toggle output %q", out)
	}
	out = run(t, "", "--data-dir", dir, "--backend", "local", "saved", "list")
	if !strings.Contains(out, "w-1") {
		t.Fatalf("expected w-1 listed, got %q", out)
	}
}
