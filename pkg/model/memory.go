package model

import (
	"time"

	"github.com/google/uuid"
)

type RecordID string

// NewRecordID generates a new unique RecordID
func NewRecordID() RecordID {
	return RecordID(uuid.New().String())
}

// Role identifies which side of a conversation a record belongs to.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Validate checks if the role is valid
func (r Role) Validate() error {
	switch r {
	case RoleUser, RoleAssistant:
		return nil
	default:
		return ErrInvalidArgument
	}
}

// MemoryRecord is one persisted, embedded conversational turn. Records are
// immutable after creation; the only deletion paths are explicit clear and
// import-replace. The struct is the stable export/import wire form.
type MemoryRecord struct {
	ID        RecordID  `json:"id" yaml:"id" firestore:"id"`
	Role      Role      `json:"role" yaml:"role" firestore:"role"`
	Text      string    `json:"text" yaml:"text" firestore:"text"`
	Embedding []float32 `json:"embedding" yaml:"embedding,flow" firestore:"-"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at" firestore:"created_at"`
	Tags      []string  `json:"tags,omitempty" yaml:"tags,omitempty" firestore:"tags,omitempty"`
}
