// Файл: internal/entities/transaction-entity.go
package entities

import "ai-assistant/pkg/types"

// Статусы транзакции.
const (
	TransactionStatusPending   = "pending"
	TransactionStatusCompleted = "completed"
	TransactionStatusFailed    = "failed"
	TransactionStatusExpired   = "expired"
	TransactionStatusRefunded  = "refunded"
)

// Способы оплаты.
const (
	PaymentMethodCreditCard = "credit_card"
	PaymentMethodCrypto     = "crypto"
	PaymentMethodPayPal     = "paypal"
)

type Transaction struct {
	ID       uint64 `json:"id" db:"id"`
	ClientID uint64 `json:"client_id" db:"client_id"`

	// Внешний идентификатор у провайдера (pi_..., charge id, invoice id).
	ProviderTxID string `json:"provider_tx_id" db:"provider_tx_id"`
	Provider     string `json:"provider" db:"provider"`
	Method       string `json:"method" db:"method"`

	// Сумма в минимальных единицах валюты (центы).
	AmountCents int64  `json:"amount_cents" db:"amount_cents"`
	Currency    string `json:"currency" db:"currency"`
	Status      string `json:"status" db:"status"`

	OrderID       *string `json:"order_id,omitempty" db:"order_id"`
	CustomerID    *string `json:"customer_id,omitempty" db:"customer_id"`
	CustomerEmail *string `json:"customer_email,omitempty" db:"customer_email"`

	// Ссылка на оплату (hosted url у крипто-провайдеров), client_secret у Stripe.
	PaymentURL   *string `json:"payment_url,omitempty" db:"payment_url"`
	ClientSecret *string `json:"-" db:"client_secret"`

	types.BaseEntity
}
