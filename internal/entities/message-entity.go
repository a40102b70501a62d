// Файл: internal/entities/message-entity.go
package entities

import "ai-assistant/pkg/types"

// Типы сообщений.
const (
	MessageTypeEmail = "email"
	MessageTypeSMS   = "sms"
)

// MessageLog - запись о каждом отправленном email/sms.
type MessageLog struct {
	ID       uint64 `json:"id" db:"id"`
	ClientID uint64 `json:"client_id" db:"client_id"`

	Type      string  `json:"type" db:"type"`
	Recipient string  `json:"recipient" db:"recipient"`
	Subject   *string `json:"subject,omitempty" db:"subject"`

	Provider string  `json:"provider" db:"provider"`
	Success  bool    `json:"success" db:"success"`
	Error    *string `json:"error,omitempty" db:"error"`

	// ID кампании, если отправка была шагом nurturing-а.
	CampaignID *uint64 `json:"campaign_id,omitempty" db:"campaign_id"`

	types.BaseEntity
}

// MessageTemplate - именованный шаблон с плейсхолдерами {{name}}.
type MessageTemplate struct {
	ID       uint64 `json:"id" db:"id"`
	ClientID uint64 `json:"client_id" db:"client_id"`

	Type    string  `json:"type" db:"type"`
	Name    string  `json:"name" db:"name"`
	Subject *string `json:"subject,omitempty" db:"subject"`
	Content string  `json:"content" db:"content"`

	types.BaseEntity
}
