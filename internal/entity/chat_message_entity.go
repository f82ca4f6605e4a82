package entity

import (
	"time"

	"github.com/google/uuid"
)

// RoutingMetadata captures how a turn was routed, persisted alongside the
// assistant message for audit and replay.
type RoutingMetadata struct {
	QuestionType    string  `json:"question_type,omitempty"`
	SpecialistUsed  string  `json:"specialist_used,omitempty"`
	SearchLoopCount int     `json:"search_loop_count,omitempty"`
	GraderScore     float64 `json:"grader_score,omitempty"`
	RefinementCount int     `json:"refinement_count,omitempty"`
}

type ChatMessage struct {
	Id            uuid.UUID
	Chat          string
	Role          string
	ChatSessionId uuid.UUID
	Routing       *RoutingMetadata
	CreatedAt     time.Time
	UpdatedAt     *time.Time
	DeletedAt     *time.Time
	IsDeleted     bool
}
