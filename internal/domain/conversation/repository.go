package conversation

import "context"

// Repository persists conversation messages.
type Repository interface {
	// Append stores msg at the end of its conversation and assigns its id
	// when empty. If msg.Timestamp is earlier than the last stored message of
	// that conversation it is raised to that timestamp. Id assignment, the
	// timestamp check and the write are atomic per conversation.
	Append(ctx context.Context, msg *Message) (*Message, error)
	// List returns the conversation in append order; unknown ids yield an
	// empty slice.
	List(ctx context.Context, conversationID string) ([]*Message, error)
	// Clear removes every message of the conversation; it is idempotent.
	Clear(ctx context.Context, conversationID string) error
}
