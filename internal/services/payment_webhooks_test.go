// Файл: internal/services/payment_webhooks_test.go
package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ai-assistant/internal/entities"
	"ai-assistant/internal/integrations/bitpay"
	"ai-assistant/internal/integrations/coinbase"
	"ai-assistant/internal/integrations/paypal"
	"ai-assistant/internal/integrations/stripe"
	"ai-assistant/pkg/config"
	"ai-assistant/pkg/eventbus"
)

func newPaymentForTest(txs *fakeTransactionRepo, cfg *config.PaymentsConfig) PaymentServiceInterface {
	if cfg == nil {
		cfg = &config.PaymentsConfig{}
	}
	return NewPaymentService(txs,
		stripe.New(cfg.Stripe.BaseURL, cfg.Stripe.SecretKey, zap.NewNop()),
		coinbase.New(cfg.Coinbase.BaseURL, cfg.Coinbase.APIKey, zap.NewNop()),
		bitpay.New(cfg.BitPay.BaseURL, cfg.BitPay.APIKey, cfg.BitPay.MerchantToken, zap.NewNop()),
		paypal.New(cfg.PayPal.BaseURL, cfg.PayPal.ClientID, cfg.PayPal.ClientSecret, zap.NewNop()),
		cfg,
		eventbus.New(zap.NewNop()),
		zap.NewNop(),
	)
}

func seedTransaction(txs *fakeTransactionRepo, clientID uint64, provider, providerTxID, status string, amountCents int64) uint64 {
	id, _ := txs.CreateTransaction(context.Background(), entities.Transaction{
		ClientID:     clientID,
		Provider:     provider,
		ProviderTxID: providerTxID,
		Status:       status,
		AmountCents:  amountCents,
		Currency:     "USD",
	})
	return id
}

func stripeSignature(secret string, body []byte) string {
	timestamp := fmt.Sprintf("%d", time.Now().Unix())
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp + "."))
	mac.Write(body)
	return fmt.Sprintf("t=%s,v1=%s", timestamp, hex.EncodeToString(mac.Sum(nil)))
}

func TestStripeWebhookCompletesTransaction(t *testing.T) {
	txs := newFakeTransactionRepo()
	id := seedTransaction(txs, 1, ProviderStripe, "pi_123", entities.TransactionStatusPending, 1000)

	cfg := &config.PaymentsConfig{}
	cfg.Stripe.WebhookSecret = "whsec_test"
	svc := newPaymentForTest(txs, cfg)

	body := []byte(`{"type":"payment_intent.succeeded","data":{"object":{"id":"pi_123"}}}`)
	headers := http.Header{}
	headers.Set("Stripe-Signature", stripeSignature("whsec_test", body))

	err := svc.HandleWebhook(context.Background(), ProviderStripe, body, headers)
	require.NoError(t, err)

	tx, err := txs.FindTransaction(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, entities.TransactionStatusCompleted, tx.Status)
}

func TestStripeWebhookRejectsBadSignature(t *testing.T) {
	txs := newFakeTransactionRepo()
	id := seedTransaction(txs, 1, ProviderStripe, "pi_123", entities.TransactionStatusPending, 1000)

	cfg := &config.PaymentsConfig{}
	cfg.Stripe.WebhookSecret = "whsec_test"
	svc := newPaymentForTest(txs, cfg)

	body := []byte(`{"type":"payment_intent.succeeded","data":{"object":{"id":"pi_123"}}}`)
	headers := http.Header{}
	headers.Set("Stripe-Signature", stripeSignature("другой_секрет", body))

	err := svc.HandleWebhook(context.Background(), ProviderStripe, body, headers)
	assert.Error(t, err)

	tx, _ := txs.FindTransaction(context.Background(), id)
	assert.Equal(t, entities.TransactionStatusPending, tx.Status)
}

func TestStripeWebhookIgnoresIrrelevantEvents(t *testing.T) {
	txs := newFakeTransactionRepo()
	id := seedTransaction(txs, 1, ProviderStripe, "pi_123", entities.TransactionStatusPending, 1000)
	svc := newPaymentForTest(txs, nil)

	body := []byte(`{"type":"payment_intent.created","data":{"object":{"id":"pi_123"}}}`)
	err := svc.HandleWebhook(context.Background(), ProviderStripe, body, http.Header{})
	require.NoError(t, err)

	tx, _ := txs.FindTransaction(context.Background(), id)
	assert.Equal(t, entities.TransactionStatusPending, tx.Status)
}

func TestCoinbaseWebhookCompletesTransaction(t *testing.T) {
	txs := newFakeTransactionRepo()
	id := seedTransaction(txs, 1, ProviderCoinbase, "ch_1", entities.TransactionStatusPending, 500)

	cfg := &config.PaymentsConfig{}
	cfg.Coinbase.WebhookSecret = "cb_secret"
	svc := newPaymentForTest(txs, cfg)

	body := []byte(`{"event":{"type":"charge:confirmed","data":{"id":"ch_1"}}}`)
	mac := hmac.New(sha256.New, []byte("cb_secret"))
	mac.Write(body)
	headers := http.Header{}
	headers.Set("X-CC-Webhook-Signature", hex.EncodeToString(mac.Sum(nil)))

	err := svc.HandleWebhook(context.Background(), ProviderCoinbase, body, headers)
	require.NoError(t, err)

	tx, _ := txs.FindTransaction(context.Background(), id)
	assert.Equal(t, entities.TransactionStatusCompleted, tx.Status)
}

func TestWebhookUnknownTransaction(t *testing.T) {
	svc := newPaymentForTest(newFakeTransactionRepo(), nil)

	body := []byte(`{"type":"payment_intent.succeeded","data":{"object":{"id":"pi_ghost"}}}`)
	err := svc.HandleWebhook(context.Background(), ProviderStripe, body, http.Header{})
	assert.Error(t, err)
}

func TestWebhookUnknownProvider(t *testing.T) {
	svc := newPaymentForTest(newFakeTransactionRepo(), nil)
	err := svc.HandleWebhook(context.Background(), "skrill", []byte(`{}`), http.Header{})
	assert.Error(t, err)
}

// Тело IPN от BitPay не доверенное: статус перепроверяется запросом к API.
func TestBitPayWebhookReverifiesInvoice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/invoices/inv_1", r.URL.Path)
		assert.Equal(t, "merchant_token", r.URL.Query().Get("token"))
		fmt.Fprint(w, `{"data":{"id":"inv_1","status":"confirmed"}}`)
	}))
	defer server.Close()

	txs := newFakeTransactionRepo()
	id := seedTransaction(txs, 1, ProviderBitPay, "inv_1", entities.TransactionStatusPending, 700)

	cfg := &config.PaymentsConfig{}
	cfg.BitPay.BaseURL = server.URL
	cfg.BitPay.MerchantToken = "merchant_token"
	svc := newPaymentForTest(txs, cfg)

	// В самом вебхуке статус "complete", но верим только ответу API.
	body := []byte(`{"data":{"id":"inv_1","status":"complete"}}`)
	err := svc.HandleWebhook(context.Background(), ProviderBitPay, body, http.Header{})
	require.NoError(t, err)

	tx, _ := txs.FindTransaction(context.Background(), id)
	assert.Equal(t, entities.TransactionStatusCompleted, tx.Status)
}

func TestPollPendingUpdatesFromProvider(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/charges/ch_9", r.URL.Path)
		fmt.Fprint(w, `{"data":{"id":"ch_9","timeline":[{"status":"NEW"},{"status":"CONFIRMED"}]}}`)
	}))
	defer server.Close()

	txs := newFakeTransactionRepo()
	id := seedTransaction(txs, 1, ProviderCoinbase, "ch_9", entities.TransactionStatusPending, 2500)

	cfg := &config.PaymentsConfig{}
	cfg.Coinbase.BaseURL = server.URL
	svc := newPaymentForTest(txs, cfg)

	require.NoError(t, svc.PollPending(context.Background()))

	tx, _ := txs.FindTransaction(context.Background(), id)
	assert.Equal(t, entities.TransactionStatusCompleted, tx.Status)
}

func TestGetStatsAggregatesByProvider(t *testing.T) {
	txs := newFakeTransactionRepo()
	seedTransaction(txs, 3, ProviderStripe, "pi_1", entities.TransactionStatusCompleted, 1000)
	seedTransaction(txs, 3, ProviderStripe, "pi_2", entities.TransactionStatusCompleted, 2000)
	seedTransaction(txs, 3, ProviderCoinbase, "ch_1", entities.TransactionStatusFailed, 500)
	seedTransaction(txs, 3, ProviderBitPay, "inv_1", entities.TransactionStatusPending, 700)
	seedTransaction(txs, 4, ProviderStripe, "pi_99", entities.TransactionStatusCompleted, 9999)

	svc := newPaymentForTest(txs, nil)

	stats, err := svc.GetStats(context.Background(), 3, time.Time{}, time.Now())
	require.NoError(t, err)

	assert.Equal(t, uint64(4), stats.TotalCount)
	assert.Equal(t, uint64(2), stats.CompletedCount)
	assert.Equal(t, uint64(1), stats.FailedCount)
	assert.Equal(t, int64(3000), stats.TotalCents)
	assert.Equal(t, int64(3000), stats.ByProvider[ProviderStripe])
	assert.InDelta(t, 50.0, stats.SuccessRate, 0.001)
}
