// Файл: internal/entities/onboarding-entity.go
package entities

import (
	"time"

	"ai-assistant/pkg/types"
)

// Шаги онбординга идут строго по порядку.
const (
	OnboardingStepProfile      = "profile"
	OnboardingStepIntegrations = "integrations"
	OnboardingStepPayment      = "payment"
	OnboardingStepDone         = "done"
)

// OnboardingProgress - прогресс онбординга одного whitelabel-клиента.
type OnboardingProgress struct {
	ID       uint64 `json:"id" db:"id"`
	ClientID uint64 `json:"client_id" db:"client_id"`

	CurrentStep    string     `json:"current_step" db:"current_step"`
	CompletedSteps []string   `json:"completed_steps" db:"completed_steps"`
	CompletedAt    *time.Time `json:"completed_at,omitempty" db:"completed_at"`

	LastReminderAt *time.Time `json:"last_reminder_at,omitempty" db:"last_reminder_at"`

	types.BaseEntity
}

// Статусы тикета поддержки.
const (
	TicketStatusOpen     = "open"
	TicketStatusResolved = "resolved"
)

// SupportTicket - обращение из телеграм-бота.
type SupportTicket struct {
	ID       uint64 `json:"id" db:"id"`
	ClientID uint64 `json:"client_id" db:"client_id"`

	TelegramChatID int64  `json:"telegram_chat_id" db:"telegram_chat_id"`
	Topic          string `json:"topic" db:"topic"`
	Message        string `json:"message" db:"message"`
	Status         string `json:"status" db:"status"`

	types.BaseEntity
}
