package dto

// ContactDTO - контакт в том виде, в котором его понимают все CRM-провайдеры.
type ContactDTO struct {
	Email       string `json:"email" validate:"required,email"`
	FirstName   string `json:"first_name" validate:"omitempty,max=100"`
	LastName    string `json:"last_name" validate:"omitempty,max=100"`
	PhoneNumber string `json:"phone_number" validate:"omitempty"`
	Company     string `json:"company" validate:"omitempty,max=150"`
	// Пользовательские поля, уходящие в CRM как есть.
	Properties map[string]string `json:"properties" validate:"omitempty"`
}

type SyncContactDTO struct {
	ClientID uint64     `json:"client_id" validate:"required"`
	Contact  ContactDTO `json:"contact" validate:"required"`
	// Пустой список = все включенные платформы.
	Platforms []string `json:"platforms" validate:"omitempty,dive,oneof=hubspot salesforce gohighlevel klaviyo"`
}

type SyncResultDTO struct {
	Platform string  `json:"platform"`
	Success  bool    `json:"success"`
	RemoteID *string `json:"remote_id,omitempty"`
	Error    *string `json:"error,omitempty"`
}

type PlatformStatusDTO struct {
	Platform  string `json:"platform"`
	Connected bool   `json:"connected"`
	Error     string `json:"error,omitempty"`
}
