package identity_test

import (
	"os"
	"path/filepath"
	"testing"

	"vocabhub/internal/platform/identity"
)

func TestStaticTokenLifecycle(t *testing.T) {
	t.Parallel()
	id := identity.NewStatic("  ")
	if id.LoggedIn() {
		t.Fatalf("blank token must be logged out")
	}
	id.Set("tok\n")
	token, ok := id.Token()
	if !ok || token != "tok" {
		t.Fatalf("unexpected token %q ok=%t", token, ok)
	}
}

func TestFromFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	missing, err := identity.FromFile(filepath.Join(dir, "nope"))
	if err != nil {
		t.Fatalf("missing file should not fail: %v", err)
	}
	if missing.LoggedIn() {
		t.Fatalf("missing file means logged out")
	}
	path := filepath.Join(dir, "token")
	if err := os.WriteFile(path, []byte("abc\n"), 0o600); err != nil {
		t.Fatalf("write token: %v", err)
	}
	id, err := identity.FromFile(path)
	if err != nil {
		t.Fatalf("from file: %v", err)
	}
	if token, _ := id.Token(); token != "abc" {
		t.Fatalf("unexpected token %q", token)
	}
}
