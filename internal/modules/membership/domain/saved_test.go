package domain_test

import (
	"reflect"
	"testing"

	"vocabhub/internal/modules/membership/domain"
)

func TestSavedSetAndIDs(t *testing.T) {
	t.Parallel()
	s := domain.NewSaved([]string{"b", "", "a", "b"})
	if s.Len() != 2 {
		t.Fatalf("expected 2 members, got %d", s.Len())
	}
	if was := s.Set("c", true); was {
		t.Fatalf("c must not be a member before Set")
	}
	if was := s.Set("a", false); !was {
		t.Fatalf("a must be a member before removal")
	}
	if got, want := s.IDs(), []string{"b", "c"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("ids mismatch: got %v want %v", got, want)
	}
}

func TestSavedZeroValueIsUsable(t *testing.T) {
	t.Parallel()
	var s domain.Saved
	if s.Contains("x") {
		t.Fatalf("zero set must be empty")
	}
	s.Set("x", true)
	if !s.Contains("x") {
		t.Fatalf("expected x after Set")
	}
}
