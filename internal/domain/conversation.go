package domain

import "time"

// Role identifies the author of a conversation message.
type Role string

const (
	// RoleUser marks a message written by the end user.
	RoleUser Role = "user"
	// RoleAssistant marks a generated answer.
	RoleAssistant Role = "assistant"
	// RoleSystem marks an instruction message.
	RoleSystem Role = "system"
)

// Message is a single conversation turn entry. Immutable once appended.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Conversation is the chat history bound to a single document reference.
type Conversation struct {
	ID                string    `json:"id"`
	DocumentReference string    `json:"document_reference"`
	Messages          []Message `json:"messages"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// NewConversation creates an empty conversation for a document reference.
func NewConversation(id, documentReference string, now time.Time) Conversation {
	return Conversation{
		ID:                id,
		DocumentReference: documentReference,
		Messages:          []Message{},
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// AppendTurn appends the user question and the assistant answer, in that
// order, and bumps UpdatedAt. Returns the updated value; the receiver is
// not mutated.
func (c Conversation) AppendTurn(question, answer string, now time.Time) Conversation {
	messages := make([]Message, 0, len(c.Messages)+2)
	messages = append(messages, c.Messages...)
	messages = append(messages,
		Message{Role: RoleUser, Content: question, Timestamp: now},
		Message{Role: RoleAssistant, Content: answer, Timestamp: now},
	)
	c.Messages = messages
	c.UpdatedAt = now
	return c
}
