package websocket

import "time"

// Envelope - "конверт" для всех сообщений в сторону дашборда.
type Envelope struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// EventPayload - уведомление о доменном событии (платеж, лид, синк CRM).
type EventPayload struct {
	EventID string                 `json:"eventId"`
	Event   string                 `json:"event"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data,omitempty"`
}
