package dto

import "encoding/json"

type CreateClientDTO struct {
	Slug string `json:"slug" validate:"required,max=50,lowercase"`
	Name string `json:"name" validate:"required,max=150"`
}

type UpdateBrandingDTO struct {
	CompanyName    string `json:"company_name" validate:"omitempty,max=150"`
	PrimaryColor   string `json:"primary_color" validate:"omitempty,hex_color"`
	SecondaryColor string `json:"secondary_color" validate:"omitempty,hex_color"`
	WelcomeText    string `json:"welcome_text" validate:"omitempty,max=2000"`
	SystemPrompt   string `json:"system_prompt" validate:"omitempty,max=4000"`
}

type UpdateFeaturesDTO struct {
	Features map[string]bool `json:"features" validate:"required"`
}

type UpdateIntegrationsDTO struct {
	Integrations map[string]json.RawMessage `json:"integrations" validate:"required"`
}

type SetActiveDTO struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

type RegisterWebhookDTO struct {
	URL    string   `json:"url" validate:"required,url"`
	Events []string `json:"events" validate:"required,min=1"`
}

type ClientThemeDTO struct {
	CompanyName    string `json:"company_name"`
	PrimaryColor   string `json:"primary_color"`
	SecondaryColor string `json:"secondary_color"`
	LogoURL        string `json:"logo_url"`
}
