package domain_test

import (
	"testing"

	"vocabhub/internal/modules/session/domain"
)

func twoItemSession() domain.StudySession {
	return domain.StudySession{
		ID:     "s-1",
		Status: domain.StatusActive,
		Items: []domain.StudyItem{
			{ID: "w-1", Primary: "apple", Secondary: "a fruit"},
			{ID: "w-2", Primary: "pear", Secondary: "another fruit"},
		},
		Metadata: map[string]int{"new": 2},
	}
}

func TestRecordAdvancesAndCompletes(t *testing.T) {
	t.Parallel()
	s := twoItemSession()
	if done := s.Record(0, domain.StudyResponse{Grade: domain.GradeKnown}); done {
		t.Fatalf("first record must not complete")
	}
	cur, ok := s.Current()
	if !ok || cur.ID != "w-2" {
		t.Fatalf("expected w-2 current, got %+v ok=%t", cur, ok)
	}
	if !s.Items[0].Responded || s.Items[0].Response.Grade != domain.GradeKnown {
		t.Fatalf("first item must be recorded: %+v", s.Items[0])
	}
	if done := s.Record(1, domain.StudyResponse{Grade: domain.GradeUnknown}); !done {
		t.Fatalf("second record must complete")
	}
	if s.Status != domain.StatusCompleted || s.Cursor != 2 {
		t.Fatalf("expected completed at cursor 2, got %s/%d", s.Status, s.Cursor)
	}
	if _, ok := s.Current(); ok {
		t.Fatalf("completed session has no current item")
	}
}

func TestCurrentRequiresActive(t *testing.T) {
	t.Parallel()
	s := twoItemSession()
	s.Status = domain.StatusAbandoned
	if _, ok := s.Current(); ok {
		t.Fatalf("abandoned session has no current item")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	t.Parallel()
	s := twoItemSession()
	c := s.Clone()
	c.Items[0].Responded = true
	c.Metadata["new"] = 99
	if s.Items[0].Responded || s.Metadata["new"] != 2 {
		t.Fatalf("clone must not alias the original")
	}
}

func TestTerminalStatuses(t *testing.T) {
	t.Parallel()
	terminal := []domain.Status{domain.StatusEmpty, domain.StatusCompleted, domain.StatusAbandoned, domain.StatusFailed}
	for _, s := range terminal {
		if !s.Terminal() {
			t.Fatalf("%s should be terminal", s)
		}
	}
	for _, s := range []domain.Status{domain.StatusIdle, domain.StatusLoading, domain.StatusActive} {
		if s.Terminal() {
			t.Fatalf("%s should not be terminal", s)
		}
	}
}

func TestParseMode(t *testing.T) {
	t.Parallel()
	if m, ok := domain.ParseMode("spelling"); !ok || m != domain.ModeSpelling {
		t.Fatalf("expected spelling mode")
	}
	if _, ok := domain.ParseMode("typing"); ok {
		t.Fatalf("unknown mode must not parse")
	}
}
