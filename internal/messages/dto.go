package messages

import (
	"time"

	"github.com/google/uuid"

	"github.com/paolomureddu/agrikmzero-backend/pkg/db/models"
)

// SendMessageRequest is the JSON payload for sending a message.
type SendMessageRequest struct {
	RecipientID uuid.UUID `json:"recipient_id" validate:"required"`
	Content     string    `json:"content" validate:"required"`
}

// MessageDTO is the transport shape of one message.
type MessageDTO struct {
	ID          uuid.UUID `json:"id"`
	SenderID    uuid.UUID `json:"sender_id"`
	RecipientID uuid.UUID `json:"recipient_id"`
	Content     string    `json:"content"`
	Read        bool      `json:"read"`
	CreatedAt   time.Time `json:"created_at"`
}

// ConversationDTO summarizes one counterparty thread for the inbox view.
type ConversationDTO struct {
	CounterpartyID   uuid.UUID  `json:"counterparty_id"`
	CounterpartyName string     `json:"counterparty_name"`
	LastMessage      MessageDTO `json:"last_message"`
	UnreadCount      int        `json:"unread_count"`
}

// FromModel maps the persisted message onto the transport DTO.
func FromModel(m *models.Message) *MessageDTO {
	if m == nil {
		return nil
	}
	return &MessageDTO{
		ID:          m.ID,
		SenderID:    m.SenderID,
		RecipientID: m.RecipientID,
		Content:     m.Content,
		Read:        m.Read,
		CreatedAt:   m.CreatedAt,
	}
}

// FromModels maps a slice of messages, never returning nil.
func FromModels(items []models.Message) []MessageDTO {
	out := make([]MessageDTO, 0, len(items))
	for i := range items {
		out = append(out, *FromModel(&items[i]))
	}
	return out
}
