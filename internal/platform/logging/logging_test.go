package logging_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vocabhub/internal/platform/logging"
)

func TestQuietWithoutFileIsNop(t *testing.T) {
	t.Parallel()
	logger, err := logging.New(logging.Options{Quiet: true})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.Info("dropped")
}

func TestFileOutputAndLevel(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "logs", "vocabhub.log")
	logger, err := logging.New(logging.Options{Level: "warn", File: path, Quiet: true})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.Info("below threshold")
	logger.Warn("session load failed")
	_ = logger.Sync()

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(b)
	if strings.Contains(out, "below threshold") {
		t.Fatalf("info entry should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, "session load failed") {
		t.Fatalf("warn entry missing: %s", out)
	}
}

func TestInvalidLevel(t *testing.T) {
	t.Parallel()
	if _, err := logging.New(logging.Options{Level: "chatty"}); err == nil {
		t.Fatalf("expected invalid level error")
	}
}

func TestOrNop(t *testing.T) {
	t.Parallel()
	if logging.OrNop(nil) == nil {
		t.Fatalf("OrNop must never return nil")
	}
}
