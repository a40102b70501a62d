// Файл: internal/entities/lead-entity.go
package entities

import "ai-assistant/pkg/types"

// Статусы лида.
const (
	LeadStatusNew       = "new"
	LeadStatusNurturing = "nurturing"
	LeadStatusEngaged   = "engaged"
	LeadStatusConverted = "converted"
	LeadStatusLost      = "lost"
)

// Источники лида.
const (
	LeadSourceTelegram = "telegram"
	LeadSourceScraper  = "scraper"
	LeadSourceManual   = "manual"
)

type Lead struct {
	ID       uint64 `json:"id" db:"id"`
	ClientID uint64 `json:"client_id" db:"client_id"`

	FullName    string  `json:"full_name" db:"full_name"`
	Email       *string `json:"email,omitempty" db:"email"`
	PhoneNumber *string `json:"phone_number,omitempty" db:"phone_number"`
	Company     *string `json:"company,omitempty" db:"company"`

	Source string `json:"source" db:"source"`
	Status string `json:"status" db:"status"`

	TelegramChatID *int64  `json:"telegram_chat_id,omitempty" db:"telegram_chat_id"`
	Notes          *string `json:"notes,omitempty" db:"notes"`

	types.BaseEntity
	types.SoftDelete
}
