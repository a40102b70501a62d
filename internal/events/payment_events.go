package events

import "ai-assistant/internal/entities"

// PaymentCompletedEvent возникает, когда транзакция переходит в completed
// (по вебхуку или по результату поллинга).
type PaymentCompletedEvent struct {
	Transaction entities.Transaction
}

func (e PaymentCompletedEvent) Name() string {
	return "payment.completed"
}

// PaymentFailedEvent возникает при переходе транзакции в failed или expired.
type PaymentFailedEvent struct {
	Transaction entities.Transaction
}

func (e PaymentFailedEvent) Name() string {
	return "payment.failed"
}
