// Файл: internal/entities/whitelabel-entity.go
package entities

import (
	"encoding/json"

	"ai-assistant/pkg/types"
)

// WhitelabelClient - тенант: конфигурация брендинга, фич и интеграций
// для одного развернутого экземпляра бота.
type WhitelabelClient struct {
	ID   uint64 `json:"id" db:"id"`
	Slug string `json:"slug" db:"slug"`
	Name string `json:"name" db:"name"`

	// JSON-колонки: плоские конфиги, зеркалящие вендорские ключи.
	Branding     json.RawMessage `json:"branding" db:"branding"`
	Features     json.RawMessage `json:"features" db:"features"`
	Integrations json.RawMessage `json:"integrations" db:"integrations"`
	Plugins      json.RawMessage `json:"plugins" db:"plugins"`

	IsActive bool `json:"is_active" db:"is_active"`

	types.BaseEntity
	types.SoftDelete
}

// Branding - распакованное содержимое колонки branding.
type Branding struct {
	CompanyName    string `json:"company_name"`
	PrimaryColor   string `json:"primary_color"`
	SecondaryColor string `json:"secondary_color"`
	LogoURL        string `json:"logo_url"`
	WelcomeText    string `json:"welcome_text"`
	SystemPrompt   string `json:"system_prompt"`
}

// ConfigWebhook - исходящий вебхук, уведомляемый об изменениях конфигурации.
type ConfigWebhook struct {
	ID       uint64 `json:"id" db:"id"`
	ClientID uint64 `json:"client_id" db:"client_id"`

	URL    string          `json:"url" db:"url"`
	Events json.RawMessage `json:"events" db:"events"`

	types.BaseEntity
}

// ConfigChange - запись в истории изменений конфигурации тенанта.
type ConfigChange struct {
	ID       uint64 `json:"id" db:"id"`
	ClientID uint64 `json:"client_id" db:"client_id"`

	Action  string  `json:"action" db:"action"`
	ActorID *uint64 `json:"actor_id,omitempty" db:"actor_id"`

	types.BaseEntity
}
