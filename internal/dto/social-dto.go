package dto

type SocialPostDTO struct {
	ClientID uint64 `json:"client_id" validate:"required"`
	Content  string `json:"content" validate:"required,max=3000"`
	// Пустой список = все включенные платформы.
	Platforms []string `json:"platforms" validate:"omitempty,dive,oneof=twitter linkedin"`
}

type SocialPostResultDTO struct {
	Platform string  `json:"platform"`
	Success  bool    `json:"success"`
	RemoteID *string `json:"remote_id,omitempty"`
	Error    *string `json:"error,omitempty"`
}
