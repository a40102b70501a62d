// Файл: internal/entities/crm-sync-entity.go
package entities

import "ai-assistant/pkg/types"

// CrmSyncRecord - результат синхронизации контакта с одной CRM-платформой.
type CrmSyncRecord struct {
	ID       uint64 `json:"id" db:"id"`
	ClientID uint64 `json:"client_id" db:"client_id"`

	Email    string `json:"email" db:"email"`
	Platform string `json:"platform" db:"platform"`

	// Идентификатор контакта на стороне CRM.
	RemoteID *string `json:"remote_id,omitempty" db:"remote_id"`

	Success bool    `json:"success" db:"success"`
	Error   *string `json:"error,omitempty" db:"error"`

	types.BaseEntity
}
