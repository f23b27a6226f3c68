// Package conversation stores the ordered message history of drafting
// conversations and caches the latest field extraction of each one.
package conversation

import (
	"time"

	"jan-server/services/report-api/internal/domain/intent"
)

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// Message is one immutable entry of a conversation.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	Role           Role      `json:"role"`
	Content        string    `json:"content"`
	Timestamp      time.Time `json:"timestamp"`
	Metadata       *Metadata `json:"metadata,omitempty"`
}

// Metadata is attached to assistant messages produced by a classifier.
type Metadata struct {
	ExtractedFields intent.Fields           `json:"extractedFields"`
	Confidence      float64                 `json:"confidence"`
	SuggestedFields []intent.SuggestedField `json:"suggestedFields"`
}

// Clone returns a copy that shares nothing mutable with m.
func (m *Message) Clone() *Message {
	if m == nil {
		return nil
	}
	out := *m
	if m.Metadata != nil {
		md := *m.Metadata
		md.ExtractedFields = m.Metadata.ExtractedFields.Clone()
		md.SuggestedFields = append([]intent.SuggestedField(nil), m.Metadata.SuggestedFields...)
		out.Metadata = &md
	}
	return &out
}
