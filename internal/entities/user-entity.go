// Файл: internal/entities/user-entity.go
package entities

import (
	"database/sql"

	"ai-assistant/pkg/types"
)

type User struct {
	ID          uint64 `json:"id" db:"id"`
	FullName    string `json:"full_name" db:"full_name"`
	Email       string `json:"email" db:"email"`
	PhoneNumber string `json:"phone_number" db:"phone_number"`

	Password string `json:"-" db:"password"`

	// admin | operator | client
	Role string `json:"role" db:"role"`

	// Привязка к whitelabel-клиенту (тенанту). NULL для глобальных админов.
	ClientID *uint64 `json:"client_id,omitempty" db:"client_id"`

	TelegramChatID sql.NullInt64 `json:"telegram_chat_id,omitempty" db:"telegram_chat_id"`
	TelegramName   *string       `json:"telegram_name,omitempty" db:"telegram_name"`

	PlanID   string `json:"plan_id" db:"plan_id"`
	IsActive bool   `json:"is_active" db:"is_active"`

	types.BaseEntity
	types.SoftDelete
}
