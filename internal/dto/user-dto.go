// Файл: internal/dto/user-dto.go
package dto

import "github.com/aarondl/null/v8"

type CreateUserDTO struct {
	FullName    string  `json:"full_name" validate:"required,max=150"`
	Email       string  `json:"email" validate:"required,email"`
	PhoneNumber string  `json:"phone_number" validate:"omitempty,e164_phone"`
	Password    string  `json:"password" validate:"required,min=6"`
	Role        string  `json:"role" validate:"required,oneof=admin operator client"`
	ClientID    *uint64 `json:"client_id" validate:"omitempty"`
	PlanID      string  `json:"plan_id" validate:"omitempty,oneof=free starter pro scale"`
}

type UpdateUserDTO struct {
	FullName    null.String `json:"full_name" validate:"omitempty"`
	Email       null.String `json:"email" validate:"omitempty"`
	PhoneNumber null.String `json:"phone_number" validate:"omitempty"`
	Password    null.String `json:"password" validate:"omitempty"`
	Role        null.String `json:"role" validate:"omitempty"`
	IsActive    null.Bool   `json:"is_active" validate:"omitempty"`
}

type ChangePlanDTO struct {
	PlanID string `json:"plan_id" validate:"required,oneof=free starter pro scale"`
}

type LinkTelegramDTO struct {
	TelegramChatID int64  `json:"telegram_chat_id" validate:"required"`
	TelegramName   string `json:"telegram_name" validate:"omitempty,max=100"`
}
