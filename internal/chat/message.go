// Package chat holds the conversation engine: the message log, the typing
// renderer that reveals answers, and the state machine that drives a turn.
package chat

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies who authored a message.
type Role string

const (
	RoleUser   Role = "user"
	RoleBot    Role = "bot"
	RoleSystem Role = "system"
)

// Message is one entry in a conversation.
type Message struct {
	ID         string    `json:"id"`
	Role       Role      `json:"role"`
	Content    string    `json:"content"`
	IsComplete bool      `json:"isComplete"`
	IsLoading  bool      `json:"isLoading,omitempty"`
	IsError    bool      `json:"isError,omitempty"`
	ShowCursor bool      `json:"showCursor,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Pending reports whether the message is still waiting for or receiving its
// content.
func (m Message) Pending() bool {
	return m.IsLoading || !m.IsComplete
}

func newMessage(role Role, content string) Message {
	return Message{
		ID:         uuid.NewString(),
		Role:       role,
		Content:    content,
		IsComplete: true,
		CreatedAt:  time.Now().UTC().Round(0),
	}
}
