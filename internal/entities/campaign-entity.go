// Файл: internal/entities/campaign-entity.go
package entities

import (
	"time"

	"ai-assistant/pkg/types"
)

// Статусы кампании.
const (
	CampaignStatusActive    = "active"
	CampaignStatusPaused    = "paused"
	CampaignStatusCompleted = "completed"
)

// Каналы шага кампании.
const (
	StepChannelEmail    = "email"
	StepChannelSMS      = "sms"
	StepChannelTelegram = "telegram"
)

type Campaign struct {
	ID       uint64 `json:"id" db:"id"`
	ClientID uint64 `json:"client_id" db:"client_id"`
	LeadID   uint64 `json:"lead_id" db:"lead_id"`

	// Имя шаблона, из которого создана кампания (welcome, re_engagement).
	Template string `json:"template" db:"template"`
	Status   string `json:"status" db:"status"`

	CurrentStep int        `json:"current_step" db:"current_step"`
	NextRunAt   *time.Time `json:"next_run_at,omitempty" db:"next_run_at"`

	types.BaseEntity
}

// CampaignStep - один выполненный или запланированный шаг кампании.
type CampaignStep struct {
	ID         uint64 `json:"id" db:"id"`
	CampaignID uint64 `json:"campaign_id" db:"campaign_id"`

	StepIndex int    `json:"step_index" db:"step_index"`
	Channel   string `json:"channel" db:"channel"`
	Subject   string `json:"subject" db:"subject"`
	Body      string `json:"body" db:"body"`

	ExecutedAt *time.Time `json:"executed_at,omitempty" db:"executed_at"`
	Success    *bool      `json:"success,omitempty" db:"success"`

	types.BaseEntity
}
