package repository

import (
	"sync"

	"legalai-assistant/internal/model"
)

// Conversation is the ordered message sequence for one session. It lives in
// memory only and is dropped wholesale on sign-out; the append order is the
// sole source of truth for both the transcript and the history sidebar.
type Conversation struct {
	mu       sync.Mutex
	messages []model.Message
	closed   bool
}

// Append adds a message to the end of the sequence. It reports false when
// the conversation was already closed, which is how a response resolving
// after sign-out gets discarded instead of mutating a dead transcript.
func (c *Conversation) Append(msg model.Message) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	c.messages = append(c.messages, msg)
	return true
}

// Delete removes the message with the given id. Deleting an absent id is a
// no-op, so repeated deletes are idempotent.
func (c *Conversation) Delete(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, msg := range c.messages {
		if msg.ID == id {
			c.messages = append(c.messages[:i], c.messages[i+1:]...)
			return true
		}
	}
	return false
}

// Rename replaces only the text of the message with the given id; id, role
// and timestamp are preserved. The rendered HTML of an assistant message is
// recomputed by the caller and passed in.
func (c *Conversation) Rename(id, content, html string) (model.Message, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.messages {
		if c.messages[i].ID == id {
			c.messages[i].Content = content
			c.messages[i].HTML = html
			return c.messages[i], true
		}
	}
	return model.Message{}, false
}

// Get returns the message with the given id.
func (c *Conversation) Get(id string) (model.Message, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, msg := range c.messages {
		if msg.ID == id {
			return msg, true
		}
	}
	return model.Message{}, false
}

// Messages returns a copy of the transcript in append order.
func (c *Conversation) Messages() []model.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// UserMessages returns the user-authored subset, preserving order. This is
// the history sidebar's view of the conversation.
func (c *Conversation) UserMessages() []model.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.Message, 0, len(c.messages))
	for _, msg := range c.messages {
		if msg.Role == model.RoleUser {
			out = append(out, msg)
		}
	}
	return out
}

func (c *Conversation) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

func (c *Conversation) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// ConversationRepository holds one conversation per session token.
type ConversationRepository struct {
	mu            sync.RWMutex
	conversations map[string]*Conversation
}

func NewConversationRepository() *ConversationRepository {
	return &ConversationRepository{conversations: make(map[string]*Conversation)}
}

// GetOrCreate returns the live conversation for the token, creating an
// empty one on first access.
func (r *ConversationRepository) GetOrCreate(token string) *Conversation {
	r.mu.RLock()
	conv, ok := r.conversations[token]
	r.mu.RUnlock()
	if ok {
		return conv
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if conv, ok := r.conversations[token]; ok {
		return conv
	}
	conv = &Conversation{}
	r.conversations[token] = conv
	return conv
}

// Drop closes and forgets the conversation for the token.
func (r *ConversationRepository) Drop(token string) {
	r.mu.Lock()
	conv, ok := r.conversations[token]
	delete(r.conversations, token)
	r.mu.Unlock()
	if ok {
		conv.close()
	}
}
