// Файл: internal/dto/campaign-dto.go
package dto

import "time"

type StartCampaignDTO struct {
	ClientID uint64 `json:"client_id" validate:"required"`
	LeadID   uint64 `json:"lead_id" validate:"required"`
	Template string `json:"template" validate:"required,oneof=welcome re_engagement"`
}

// CampaignProgressDTO - кампания вместе с выполненными шагами.
type CampaignProgressDTO struct {
	ID          uint64     `json:"id"`
	LeadID      uint64     `json:"lead_id"`
	Template    string     `json:"template"`
	Status      string     `json:"status"`
	CurrentStep int        `json:"current_step"`
	TotalSteps  int        `json:"total_steps"`
	NextRunAt   *time.Time `json:"next_run_at,omitempty"`
	Steps       []StepResultDTO `json:"steps"`
}

type StepResultDTO struct {
	StepIndex  int        `json:"step_index"`
	Channel    string     `json:"channel"`
	Subject    string     `json:"subject,omitempty"`
	ExecutedAt *time.Time `json:"executed_at,omitempty"`
	Success    *bool      `json:"success,omitempty"`
}
