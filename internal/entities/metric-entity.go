// Файл: internal/entities/metric-entity.go
package entities

import (
	"time"
)

// MetricSnapshot - периодический срез метрик, который собирает шедулер.
type MetricSnapshot struct {
	ID       uint64 `json:"id" db:"id"`
	ClientID uint64 `json:"client_id" db:"client_id"`

	ChatMessages   uint64 `json:"chat_messages" db:"chat_messages"`
	MessagesSent   uint64 `json:"messages_sent" db:"messages_sent"`
	CrmSyncs       uint64 `json:"crm_syncs" db:"crm_syncs"`
	LeadsTotal     uint64 `json:"leads_total" db:"leads_total"`
	LeadsConverted uint64 `json:"leads_converted" db:"leads_converted"`
	PaymentsCents  int64  `json:"payments_cents" db:"payments_cents"`
	PaymentsCount  uint64 `json:"payments_count" db:"payments_count"`

	CollectedAt time.Time `json:"collected_at" db:"collected_at"`
}
