package entities

import (
	"time"

	"gorm.io/datatypes"
)

// TableName specifies the table name for Message.
func (Message) TableName() string {
	return "conversation_messages"
}

// Message represents one persisted conversation message. Rows are ordered by
// the serial ID, assigned while the conversation's advisory lock is held.
type Message struct {
	ID             uint           `gorm:"primaryKey"`
	PublicID       string         `gorm:"uniqueIndex;size:64"`
	ConversationID string         `gorm:"size:128;index:idx_message_conversation"`
	Role           string         `gorm:"size:16"`
	Content        string         `gorm:"type:text"`
	Metadata       datatypes.JSON `gorm:"type:jsonb"`
	SentAt         time.Time      `gorm:"not null"`
}
