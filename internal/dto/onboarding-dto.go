package dto

type InitOnboardingDTO struct {
	ClientID       uint64 `json:"client_id" validate:"required"`
	TelegramChatID int64  `json:"telegram_chat_id" validate:"omitempty"`
}

type UpdateStepDTO struct {
	StepID string                 `json:"step_id" validate:"required,oneof=profile integrations payment done"`
	Data   map[string]interface{} `json:"data" validate:"omitempty"`
}

type OnboardingProgressDTO struct {
	ClientID       uint64   `json:"client_id"`
	CurrentStep    string   `json:"current_step"`
	CompletedSteps []string `json:"completed_steps"`
	PercentDone    int      `json:"percent_done"`
	Completed      bool     `json:"completed"`
}

type CreateTicketDTO struct {
	ClientID       uint64 `json:"client_id" validate:"required"`
	TelegramChatID int64  `json:"telegram_chat_id" validate:"required"`
	Topic          string `json:"topic" validate:"required,max=100"`
	Message        string `json:"message" validate:"required,max=2000"`
}
