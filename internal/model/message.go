package model

import "time"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one conversational turn. Assistant messages carry the rendered
// HTML of their markdown content; user messages are kept literal. Failed
// marks the assistant-lane error message appended when a query could not be
// answered.
type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	HTML      string    `json:"html,omitempty"`
	Failed    bool      `json:"failed,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
