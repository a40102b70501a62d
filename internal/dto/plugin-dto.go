package dto

type PluginStatusDTO struct {
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
	Healthy bool   `json:"healthy"`
	Error   string `json:"error,omitempty"`
}

type TogglePluginDTO struct {
	ClientID uint64 `json:"client_id" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Enabled  *bool  `json:"enabled" validate:"required"`
}

type ChatMessageDTO struct {
	ClientID uint64 `json:"client_id" validate:"required"`
	UserID   int64  `json:"user_id" validate:"required"`
	Message  string `json:"message" validate:"required,max=4000"`
}

type ChatResponseDTO struct {
	Reply string `json:"reply"`
}
