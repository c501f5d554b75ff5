package dto

import "vocabhub/internal/modules/session/domain"

// Wire shapes shared by the HTTP gateway client and the local server.

type LoadReply[T any] struct {
	SessionID string            `json:"session_id"`
	Items     []domain.Entry[T] `json:"items"`
	Metadata  map[string]int    `json:"metadata,omitempty"`
}

type SubmitRequest[R any] struct {
	ItemID   string `json:"item_id"`
	Response R      `json:"response"`
}

type SubmitReply struct {
	Accepted  bool               `json:"accepted"`
	Aggregate map[string]float64 `json:"aggregate,omitempty"`
}

type AcceptReply struct {
	Accepted bool `json:"accepted"`
}

const (
	StudySessionsPath      = "/v1/study/sessions"
	AssessmentSessionsPath = "/v1/assessment/sessions"
)
