package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	InquiryStatusOpen     = "open"
	InquiryStatusResolved = "resolved"
)

// Inquiry is a human-handoff ticket opened when the bot repeatedly fails
// to understand what the user wants.
type Inquiry struct {
	Id            uuid.UUID
	ChatSessionId uuid.UUID
	Question      string
	Status        string
	CreatedAt     time.Time
	UpdatedAt     *time.Time
	DeletedAt     *time.Time
	IsDeleted     bool
}
