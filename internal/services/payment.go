// Файл: internal/services/payment.go
package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"ai-assistant/internal/dto"
	"ai-assistant/internal/entities"
	"ai-assistant/internal/events"
	"ai-assistant/internal/integrations/bitpay"
	"ai-assistant/internal/integrations/coinbase"
	"ai-assistant/internal/integrations/paypal"
	"ai-assistant/internal/integrations/stripe"
	"ai-assistant/internal/repositories"
	"ai-assistant/pkg/config"
	apperrors "ai-assistant/pkg/errors"
	"ai-assistant/pkg/eventbus"
	"ai-assistant/pkg/types"
)

// Имена платежных провайдеров.
const (
	ProviderStripe   = "stripe"
	ProviderCoinbase = "coinbase"
	ProviderBitPay   = "bitpay"
	ProviderPayPal   = "paypal"
)

type PaymentServiceInterface interface {
	CreatePayment(ctx context.Context, payload dto.CreatePaymentDTO) (*dto.PaymentCreatedDTO, error)
	GetStatus(ctx context.Context, transactionID uint64) (*dto.PaymentStatusDTO, error)
	Refund(ctx context.Context, transactionID uint64, payload dto.RefundPaymentDTO) error
	HandleWebhook(ctx context.Context, provider string, body []byte, headers http.Header) error
	GetTransactions(ctx context.Context, clientID uint64, filter types.Filter) ([]entities.Transaction, uint64, error)
	GetStats(ctx context.Context, clientID uint64, from, to time.Time) (*dto.TransactionStatsDTO, error)
	PollPending(ctx context.Context) error
}

type PaymentService struct {
	txRepo   repositories.TransactionRepositoryInterface
	stripe   *stripe.Client
	coinbase *coinbase.Client
	bitpay   *bitpay.Client
	paypal   *paypal.Client
	cfg      *config.PaymentsConfig
	bus      *eventbus.Bus
	logger   *zap.Logger
}

func NewPaymentService(
	txRepo repositories.TransactionRepositoryInterface,
	stripeClient *stripe.Client,
	coinbaseClient *coinbase.Client,
	bitpayClient *bitpay.Client,
	paypalClient *paypal.Client,
	cfg *config.PaymentsConfig,
	bus *eventbus.Bus,
	logger *zap.Logger,
) PaymentServiceInterface {
	return &PaymentService{
		txRepo:   txRepo,
		stripe:   stripeClient,
		coinbase: coinbaseClient,
		bitpay:   bitpayClient,
		paypal:   paypalClient,
		cfg:      cfg,
		bus:      bus,
		logger:   logger,
	}
}

// AmountToCents переводит строку вида "49.99" в центы.
func AmountToCents(amount string) (int64, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return 0, apperrors.NewBadRequestError("сумма не указана")
	}

	// ParseInt принимает знак, поэтому "-0.50" прошел бы проверку whole < 0.
	if strings.ContainsAny(amount, "+-") {
		return 0, apperrors.NewBadRequestError("некорректная сумма")
	}

	parts := strings.SplitN(amount, ".", 2)
	whole, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, apperrors.NewBadRequestError("некорректная сумма")
	}

	var fraction int64
	if len(parts) == 2 {
		frac := parts[1]
		if len(frac) > 2 {
			return 0, apperrors.NewBadRequestError("сумма не может содержать более двух знаков после точки")
		}
		for len(frac) < 2 {
			frac += "0"
		}
		fraction, err = strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0, apperrors.NewBadRequestError("некорректная сумма")
		}
	}

	cents := whole*100 + fraction
	if cents <= 0 {
		return 0, apperrors.NewBadRequestError("сумма должна быть больше нуля")
	}
	return cents, nil
}

// CentsToAmount форматирует центы обратно в строку "49.99".
func CentsToAmount(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}

func (s *PaymentService) CreatePayment(ctx context.Context, payload dto.CreatePaymentDTO) (*dto.PaymentCreatedDTO, error) {
	amountCents, err := AmountToCents(payload.Amount)
	if err != nil {
		return nil, err
	}

	currency := strings.ToUpper(payload.Currency)
	if currency == "" {
		currency = "USD"
	}

	tx := entities.Transaction{
		ClientID:    payload.ClientID,
		Method:      payload.Method,
		AmountCents: amountCents,
		Currency:    currency,
		Status:      entities.TransactionStatusPending,
	}
	if payload.OrderID != "" {
		tx.OrderID = &payload.OrderID
	}
	if payload.CustomerID != "" {
		tx.CustomerID = &payload.CustomerID
	}
	if payload.CustomerEmail != "" {
		tx.CustomerEmail = &payload.CustomerEmail
	}

	switch payload.Method {
	case entities.PaymentMethodCreditCard:
		intent, err := s.stripe.CreatePaymentIntent(ctx, amountCents, currency, map[string]string{
			"client_id": strconv.FormatUint(payload.ClientID, 10),
			"order_id":  payload.OrderID,
		})
		if err != nil {
			return nil, fmt.Errorf("ошибка создания платежа Stripe: %w", err)
		}
		tx.Provider = ProviderStripe
		tx.ProviderTxID = intent.ID
		tx.ClientSecret = &intent.ClientSecret

	case entities.PaymentMethodCrypto:
		provider := payload.CryptoProvider
		if provider == "" {
			provider = ProviderCoinbase
		}

		switch provider {
		case ProviderCoinbase:
			charge, err := s.coinbase.CreateCharge(ctx, "Оплата подписки", payload.Description,
				CentsToAmount(amountCents), currency, map[string]string{
					"client_id": strconv.FormatUint(payload.ClientID, 10),
				})
			if err != nil {
				return nil, fmt.Errorf("ошибка создания платежа Coinbase: %w", err)
			}
			tx.Provider = ProviderCoinbase
			tx.ProviderTxID = charge.ID
			tx.PaymentURL = &charge.HostedURL

		case ProviderBitPay:
			invoice, err := s.bitpay.CreateInvoice(ctx, float64(amountCents)/100, currency,
				payload.OrderID, "", payload.RedirectURL, payload.CustomerEmail)
			if err != nil {
				return nil, fmt.Errorf("ошибка создания платежа BitPay: %w", err)
			}
			tx.Provider = ProviderBitPay
			tx.ProviderTxID = invoice.ID
			tx.PaymentURL = &invoice.URL

		default:
			return nil, apperrors.NewBadRequestError("неизвестный крипто-провайдер: " + provider)
		}

	case entities.PaymentMethodPayPal:
		order, err := s.paypal.CreateOrder(ctx, CentsToAmount(amountCents), currency, payload.OrderID)
		if err != nil {
			return nil, fmt.Errorf("ошибка создания платежа PayPal: %w", err)
		}
		tx.Provider = ProviderPayPal
		tx.ProviderTxID = order.ID
		approveURL := order.ApproveURL()
		if approveURL != "" {
			tx.PaymentURL = &approveURL
		}

	default:
		return nil, apperrors.NewBadRequestError("неизвестный способ оплаты: " + payload.Method)
	}

	newID, err := s.txRepo.CreateTransaction(ctx, tx)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Создана транзакция",
		zap.Uint64("transaction_id", newID),
		zap.String("provider", tx.Provider),
		zap.Int64("amount_cents", amountCents),
	)

	return &dto.PaymentCreatedDTO{
		TransactionID: newID,
		ProviderTxID:  tx.ProviderTxID,
		Provider:      tx.Provider,
		Status:        tx.Status,
		PaymentURL:    tx.PaymentURL,
		ClientSecret:  tx.ClientSecret,
	}, nil
}

func (s *PaymentService) GetStatus(ctx context.Context, transactionID uint64) (*dto.PaymentStatusDTO, error) {
	tx, err := s.txRepo.FindTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	providerStatus, localStatus, err := s.fetchProviderStatus(ctx, tx)
	if err != nil {
		return nil, err
	}

	if localStatus != tx.Status && localStatus != "" {
		if err := s.applyStatus(ctx, tx, localStatus); err != nil {
			return nil, err
		}
		tx.Status = localStatus
	}

	return &dto.PaymentStatusDTO{
		TransactionID:  tx.ID,
		ProviderTxID:   tx.ProviderTxID,
		Provider:       tx.Provider,
		LocalStatus:    tx.Status,
		ProviderStatus: providerStatus,
	}, nil
}

// fetchProviderStatus спрашивает провайдера и переводит его статус в локальный.
// Пустой локальный статус означает "без изменений".
func (s *PaymentService) fetchProviderStatus(ctx context.Context, tx *entities.Transaction) (string, string, error) {
	switch tx.Provider {
	case ProviderStripe:
		intent, err := s.stripe.GetPaymentIntent(ctx, tx.ProviderTxID)
		if err != nil {
			return "", "", err
		}
		return intent.Status, mapStripeStatus(intent.Status), nil

	case ProviderCoinbase:
		charge, err := s.coinbase.GetCharge(ctx, tx.ProviderTxID)
		if err != nil {
			return "", "", err
		}
		status := charge.LatestStatus()
		return status, mapCoinbaseStatus(status), nil

	case ProviderBitPay:
		invoice, err := s.bitpay.GetInvoice(ctx, tx.ProviderTxID)
		if err != nil {
			return "", "", err
		}
		return invoice.Status, mapBitPayStatus(invoice.Status), nil

	case ProviderPayPal:
		order, err := s.paypal.GetOrder(ctx, tx.ProviderTxID)
		if err != nil {
			return "", "", err
		}
		return order.Status, mapPayPalStatus(order.Status), nil
	}

	return "", "", apperrors.NewBadRequestError("неизвестный провайдер: " + tx.Provider)
}

func mapStripeStatus(status string) string {
	switch status {
	case "succeeded":
		return entities.TransactionStatusCompleted
	case "canceled":
		return entities.TransactionStatusFailed
	default:
		return ""
	}
}

func mapCoinbaseStatus(status string) string {
	switch strings.ToUpper(status) {
	case "COMPLETED", "CONFIRMED", "RESOLVED":
		return entities.TransactionStatusCompleted
	case "EXPIRED":
		return entities.TransactionStatusExpired
	case "CANCELED":
		return entities.TransactionStatusFailed
	default:
		return ""
	}
}

func mapBitPayStatus(status string) string {
	switch strings.ToLower(status) {
	case "complete", "confirmed":
		return entities.TransactionStatusCompleted
	case "expired":
		return entities.TransactionStatusExpired
	case "invalid":
		return entities.TransactionStatusFailed
	default:
		return ""
	}
}

func mapPayPalStatus(status string) string {
	switch strings.ToUpper(status) {
	case "COMPLETED":
		return entities.TransactionStatusCompleted
	case "VOIDED":
		return entities.TransactionStatusFailed
	default:
		return ""
	}
}

// applyStatus сохраняет новый статус и публикует событие.
func (s *PaymentService) applyStatus(ctx context.Context, tx *entities.Transaction, status string) error {
	if tx.Status == status {
		return nil
	}
	if err := s.txRepo.UpdateStatus(ctx, tx.ID, status); err != nil {
		return err
	}

	updated := *tx
	updated.Status = status

	switch status {
	case entities.TransactionStatusCompleted:
		s.bus.Publish(ctx, events.PaymentCompletedEvent{Transaction: updated})
	case entities.TransactionStatusFailed, entities.TransactionStatusExpired:
		s.bus.Publish(ctx, events.PaymentFailedEvent{Transaction: updated})
	}

	s.logger.Info("Статус транзакции обновлен",
		zap.Uint64("transaction_id", tx.ID),
		zap.String("old_status", tx.Status),
		zap.String("new_status", status),
	)
	return nil
}

func (s *PaymentService) Refund(ctx context.Context, transactionID uint64, payload dto.RefundPaymentDTO) error {
	tx, err := s.txRepo.FindTransaction(ctx, transactionID)
	if err != nil {
		return err
	}

	if tx.Status != entities.TransactionStatusCompleted {
		return apperrors.NewBadRequestError("возврат возможен только для завершенных транзакций")
	}

	var refundCents int64
	if payload.Amount != "" {
		refundCents, err = AmountToCents(payload.Amount)
		if err != nil {
			return err
		}
		if refundCents > tx.AmountCents {
			return apperrors.NewBadRequestError("сумма возврата превышает сумму транзакции")
		}
	}

	switch tx.Provider {
	case ProviderStripe:
		if _, err := s.stripe.CreateRefund(ctx, tx.ProviderTxID, refundCents); err != nil {
			return fmt.Errorf("ошибка возврата Stripe: %w", err)
		}

	case ProviderPayPal:
		value := CentsToAmount(tx.AmountCents)
		if refundCents > 0 {
			value = CentsToAmount(refundCents)
		}
		if _, err := s.paypal.RefundCapture(ctx, tx.ProviderTxID, value, tx.Currency); err != nil {
			return fmt.Errorf("ошибка возврата PayPal: %w", err)
		}

	default:
		// Крипто-платежи включают ручные возвраты на стороне провайдера.
		return apperrors.NewBadRequestError("возврат для провайдера " + tx.Provider + " не поддерживается")
	}

	return s.applyStatus(ctx, tx, entities.TransactionStatusRefunded)
}

// --- Вебхуки ---

type stripeWebhookEvent struct {
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID string `json:"id"`
		} `json:"object"`
	} `json:"data"`
}

type coinbaseWebhookEvent struct {
	Event struct {
		Type string `json:"type"`
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	} `json:"event"`
}

type bitpayWebhookEvent struct {
	Data struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	} `json:"data"`
}

type paypalWebhookEvent struct {
	EventType string `json:"event_type"`
	Resource  struct {
		ID string `json:"id"`
	} `json:"resource"`
}

func (s *PaymentService) HandleWebhook(ctx context.Context, provider string, body []byte, headers http.Header) error {
	switch provider {
	case ProviderStripe:
		return s.handleStripeWebhook(ctx, body, headers)
	case ProviderCoinbase:
		return s.handleCoinbaseWebhook(ctx, body, headers)
	case ProviderBitPay:
		return s.handleBitPayWebhook(ctx, body)
	case ProviderPayPal:
		return s.handlePayPalWebhook(ctx, body)
	}
	return apperrors.NewBadRequestError("неизвестный провайдер вебхука: " + provider)
}

// verifyStripeSignature проверяет заголовок Stripe-Signature
// (t=timestamp,v1=hmac_sha256("timestamp.payload")).
func verifyStripeSignature(secret string, body []byte, header string) bool {
	var timestamp, signature string
	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			timestamp = kv[1]
		case "v1":
			signature = kv[1]
		}
	}
	if timestamp == "" || signature == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp + "."))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}

func (s *PaymentService) handleStripeWebhook(ctx context.Context, body []byte, headers http.Header) error {
	if s.cfg.Stripe.WebhookSecret != "" {
		if !verifyStripeSignature(s.cfg.Stripe.WebhookSecret, body, headers.Get("Stripe-Signature")) {
			s.logger.Warn("Невалидная подпись вебхука Stripe")
			return apperrors.ErrUnauthorized
		}
	}

	var event stripeWebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return apperrors.NewBadRequestError("невалидное тело вебхука Stripe")
	}

	var status string
	switch event.Type {
	case "payment_intent.succeeded":
		status = entities.TransactionStatusCompleted
	case "payment_intent.payment_failed", "payment_intent.canceled":
		status = entities.TransactionStatusFailed
	default:
		// Неинтересные события подтверждаем без обработки.
		return nil
	}

	return s.applyWebhookStatus(ctx, ProviderStripe, event.Data.Object.ID, status)
}

func (s *PaymentService) handleCoinbaseWebhook(ctx context.Context, body []byte, headers http.Header) error {
	if s.cfg.Coinbase.WebhookSecret != "" {
		mac := hmac.New(sha256.New, []byte(s.cfg.Coinbase.WebhookSecret))
		mac.Write(body)
		expected := hex.EncodeToString(mac.Sum(nil))
		if !hmac.Equal([]byte(expected), []byte(headers.Get("X-CC-Webhook-Signature"))) {
			s.logger.Warn("Невалидная подпись вебхука Coinbase")
			return apperrors.ErrUnauthorized
		}
	}

	var event coinbaseWebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return apperrors.NewBadRequestError("невалидное тело вебхука Coinbase")
	}

	var status string
	switch event.Event.Type {
	case "charge:confirmed", "charge:resolved":
		status = entities.TransactionStatusCompleted
	case "charge:failed":
		status = entities.TransactionStatusFailed
	default:
		return nil
	}

	return s.applyWebhookStatus(ctx, ProviderCoinbase, event.Event.Data.ID, status)
}

func (s *PaymentService) handleBitPayWebhook(ctx context.Context, body []byte) error {
	var event bitpayWebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return apperrors.NewBadRequestError("невалидное тело вебхука BitPay")
	}
	if event.Data.ID == "" {
		return apperrors.NewBadRequestError("в вебхуке BitPay отсутствует id инвойса")
	}

	// BitPay IPN не подписан, статус перепроверяется прямым запросом.
	invoice, err := s.bitpay.GetInvoice(ctx, event.Data.ID)
	if err != nil {
		return err
	}

	status := mapBitPayStatus(invoice.Status)
	if status == "" {
		return nil
	}
	return s.applyWebhookStatus(ctx, ProviderBitPay, invoice.ID, status)
}

func (s *PaymentService) handlePayPalWebhook(ctx context.Context, body []byte) error {
	var event paypalWebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return apperrors.NewBadRequestError("невалидное тело вебхука PayPal")
	}

	switch event.EventType {
	case "CHECKOUT.ORDER.APPROVED", "PAYMENT.CAPTURE.COMPLETED":
	default:
		return nil
	}

	// Статус перепроверяется у провайдера, тело вебхука не считается доверенным.
	order, err := s.paypal.GetOrder(ctx, event.Resource.ID)
	if err != nil {
		return err
	}

	status := mapPayPalStatus(order.Status)
	if status == "" {
		return nil
	}
	return s.applyWebhookStatus(ctx, ProviderPayPal, order.ID, status)
}

func (s *PaymentService) applyWebhookStatus(ctx context.Context, provider, providerTxID, status string) error {
	tx, err := s.txRepo.FindByProviderTxID(ctx, provider, providerTxID)
	if err != nil {
		s.logger.Warn("Вебхук для неизвестной транзакции",
			zap.String("provider", provider),
			zap.String("provider_tx_id", providerTxID),
		)
		return err
	}
	return s.applyStatus(ctx, tx, status)
}

// --- Списки и статистика ---

func (s *PaymentService) GetTransactions(ctx context.Context, clientID uint64, filter types.Filter) ([]entities.Transaction, uint64, error) {
	return s.txRepo.GetTransactions(ctx, clientID, filter)
}

func (s *PaymentService) GetStats(ctx context.Context, clientID uint64, from, to time.Time) (*dto.TransactionStatsDTO, error) {
	groups, err := s.txRepo.GetProviderStats(ctx, clientID, from, to)
	if err != nil {
		return nil, err
	}

	stats := dto.TransactionStatsDTO{
		ByProvider: make(map[string]int64),
	}

	for _, group := range groups {
		stats.TotalCount += group.Count
		switch group.Status {
		case entities.TransactionStatusCompleted:
			stats.CompletedCount += group.Count
			stats.TotalCents += group.TotalCents
			stats.ByProvider[group.Provider] += group.TotalCents
		case entities.TransactionStatusFailed, entities.TransactionStatusExpired:
			stats.FailedCount += group.Count
		}
	}

	if stats.TotalCount > 0 {
		stats.SuccessRate = float64(stats.CompletedCount) / float64(stats.TotalCount) * 100
	}

	return &stats, nil
}

// PollPending опрашивает провайдеров по всем pending-транзакциям.
// Вызывается шедулером каждые PollInterval.
func (s *PaymentService) PollPending(ctx context.Context) error {
	pending, err := s.txRepo.GetPending(ctx,
		[]string{ProviderCoinbase, ProviderBitPay, ProviderPayPal}, 24*time.Hour)
	if err != nil {
		return err
	}

	for i := range pending {
		tx := pending[i]
		_, localStatus, err := s.fetchProviderStatus(ctx, &tx)
		if err != nil {
			s.logger.Warn("Ошибка опроса провайдера",
				zap.Uint64("transaction_id", tx.ID),
				zap.String("provider", tx.Provider),
				zap.Error(err),
			)
			continue
		}
		if localStatus == "" {
			continue
		}
		if err := s.applyStatus(ctx, &tx, localStatus); err != nil {
			s.logger.Error("Ошибка обновления статуса транзакции",
				zap.Uint64("transaction_id", tx.ID),
				zap.Error(err),
			)
		}
	}

	return nil
}
