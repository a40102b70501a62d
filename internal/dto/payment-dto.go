package dto

type CreatePaymentDTO struct {
	ClientID uint64 `json:"client_id" validate:"required"`
	// credit_card | crypto | paypal
	Method   string `json:"payment_method" validate:"required,oneof=credit_card crypto paypal"`
	Amount   string `json:"amount" validate:"required"`
	Currency string `json:"currency" validate:"omitempty,len=3"`
	// coinbase | bitpay (только для method=crypto)
	CryptoProvider string `json:"crypto_provider" validate:"omitempty,oneof=coinbase bitpay"`

	OrderID       string `json:"order_id" validate:"omitempty,max=100"`
	CustomerID    string `json:"customer_id" validate:"omitempty,max=100"`
	CustomerEmail string `json:"customer_email" validate:"omitempty,email"`
	Description   string `json:"description" validate:"omitempty,max=300"`
	RedirectURL   string `json:"redirect_url" validate:"omitempty,url"`
}

type PaymentCreatedDTO struct {
	TransactionID uint64  `json:"transaction_id"`
	ProviderTxID  string  `json:"provider_tx_id"`
	Provider      string  `json:"provider"`
	Status        string  `json:"status"`
	PaymentURL    *string `json:"payment_url,omitempty"`
	ClientSecret  *string `json:"client_secret,omitempty"`
}

type RefundPaymentDTO struct {
	// Пустая сумма = полный возврат.
	Amount string `json:"amount" validate:"omitempty"`
}

type PaymentStatusDTO struct {
	TransactionID  uint64 `json:"transaction_id"`
	ProviderTxID   string `json:"provider_tx_id"`
	Provider       string `json:"provider"`
	LocalStatus    string `json:"local_status"`
	ProviderStatus string `json:"provider_status"`
}

type TransactionStatsDTO struct {
	TotalCount     uint64           `json:"total_count"`
	CompletedCount uint64           `json:"completed_count"`
	FailedCount    uint64           `json:"failed_count"`
	TotalCents     int64            `json:"total_cents"`
	SuccessRate    float64          `json:"success_rate"`
	ByProvider     map[string]int64 `json:"by_provider"`
}
