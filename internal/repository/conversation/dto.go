package conversation

import (
	"time"

	"github.com/mugeshbabu/docchat/internal/domain"
)

// conversationDTO is the stored JSON shape of a conversation.
type conversationDTO struct {
	ID                string       `json:"id"`
	DocumentReference string       `json:"document_reference"`
	Messages          []messageDTO `json:"messages"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
}

type messageDTO struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

func fromDomain(c domain.Conversation) conversationDTO {
	messages := make([]messageDTO, len(c.Messages))
	for i, m := range c.Messages {
		messages[i] = messageDTO{
			Role:      string(m.Role),
			Content:   m.Content,
			Timestamp: m.Timestamp,
		}
	}
	return conversationDTO{
		ID:                c.ID,
		DocumentReference: c.DocumentReference,
		Messages:          messages,
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
	}
}

func (d conversationDTO) toDomain() domain.Conversation {
	messages := make([]domain.Message, len(d.Messages))
	for i, m := range d.Messages {
		messages[i] = domain.Message{
			Role:      domain.Role(m.Role),
			Content:   m.Content,
			Timestamp: m.Timestamp,
		}
	}
	return domain.Conversation{
		ID:                d.ID,
		DocumentReference: d.DocumentReference,
		Messages:          messages,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}
