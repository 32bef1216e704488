package domain

import "time"

// TimestampLayout is the fixed-width RFC 3339 layout used for message
// timestamps. Fixed width keeps lexicographic order equal to chronological
// order, which the history manager relies on when sorting stored slots.
const TimestampLayout = "2006-01-02T15:04:05.000000000Z"

// Message is one turn in a conversation.
type Message struct {
	Role      Role   `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// NewMessage builds a message stamped with the current UTC time.
func NewMessage(role Role, content string) Message {
	return Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC().Format(TimestampLayout),
	}
}
