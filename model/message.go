package model

import "time"

// Chat message roles as sent to providers.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a chat message in a conversation.
// Messages are immutable once created; ordering within a conversation
// is significant and must be preserved by every store and provider.
type Message struct {
	Role      string
	Content   string
	Timestamp time.Time
}

// NewMessage creates a timestamped message.
func NewMessage(role, content string) Message {
	return Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// HasSystem reports whether the message list already carries a system
// message. A role's system prompt is injected once per conversation,
// not repeated every turn.
func HasSystem(messages []Message) bool {
	for _, msg := range messages {
		if msg.Role == RoleSystem {
			return true
		}
	}
	return false
}
