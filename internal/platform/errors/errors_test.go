package apperrors_test

import (
	"errors"
	"fmt"
	"testing"

	apperrors "vocabhub/internal/platform/errors"
)

func TestKindOfWalksWrappedChain(t *testing.T) {
	t.Parallel()
	base := apperrors.New("session.load", apperrors.KindTransport, errors.New("dial tcp: refused"))
	wrapped := fmt.Errorf("start study: %w", base)

	if got := apperrors.KindOf(wrapped); got != apperrors.KindTransport {
		t.Fatalf("expected transport kind, got %q", got)
	}
	if !apperrors.IsKind(wrapped, apperrors.KindTransport) {
		t.Fatalf("IsKind should match wrapped error")
	}
	if apperrors.IsKind(nil, apperrors.KindTransport) {
		t.Fatalf("nil error must not match any kind")
	}
	if apperrors.KindOf(errors.New("plain")) != "" {
		t.Fatalf("plain errors have no kind")
	}
}

func TestErrorMessageIncludesOpAndKind(t *testing.T) {
	t.Parallel()
	err := apperrors.New("membership.toggle", apperrors.KindRejected, nil)
	if err.Error() != "membership.toggle: rejected" {
		t.Fatalf("unexpected message: %s", err.Error())
	}
	inner := errors.New("boom")
	err = apperrors.New("session.submit", apperrors.KindTransport, inner)
	if !errors.Is(err, inner) {
		t.Fatalf("expected errors.Is to reach the wrapped cause")
	}
}
