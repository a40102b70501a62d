package dto

import "github.com/aarondl/null/v8"

type CreateLeadDTO struct {
	ClientID    uint64 `json:"client_id" validate:"required"`
	FullName    string `json:"full_name" validate:"required,max=150"`
	Email       string `json:"email" validate:"omitempty,email"`
	PhoneNumber string `json:"phone_number" validate:"omitempty,e164_phone"`
	Company     string `json:"company" validate:"omitempty,max=150"`
	Source      string `json:"source" validate:"required,oneof=telegram scraper manual"`
	Notes       string `json:"notes" validate:"omitempty,max=2000"`
}

type UpdateLeadDTO struct {
	FullName    null.String `json:"full_name" validate:"omitempty"`
	Email       null.String `json:"email" validate:"omitempty"`
	PhoneNumber null.String `json:"phone_number" validate:"omitempty"`
	Company     null.String `json:"company" validate:"omitempty"`
	Status      null.String `json:"status" validate:"omitempty"`
	Notes       null.String `json:"notes" validate:"omitempty"`
}

type LeadDTO struct {
	ID          uint64  `json:"id"`
	ClientID    uint64  `json:"client_id"`
	FullName    string  `json:"full_name"`
	Email       *string `json:"email,omitempty"`
	PhoneNumber *string `json:"phone_number,omitempty"`
	Company     *string `json:"company,omitempty"`
	Source      string  `json:"source"`
	Status      string  `json:"status"`
	Notes       *string `json:"notes,omitempty"`
	CreatedAt   string  `json:"created_at"`
}
