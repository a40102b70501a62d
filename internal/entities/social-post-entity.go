// Файл: internal/entities/social-post-entity.go
package entities

import "ai-assistant/pkg/types"

// SocialPost - результат публикации на одной платформе.
type SocialPost struct {
	ID       uint64 `json:"id" db:"id"`
	ClientID uint64 `json:"client_id" db:"client_id"`

	Platform string  `json:"platform" db:"platform"`
	Content  string  `json:"content" db:"content"`
	RemoteID *string `json:"remote_id,omitempty" db:"remote_id"`

	Success bool    `json:"success" db:"success"`
	Error   *string `json:"error,omitempty" db:"error"`

	types.BaseEntity
}
