// Файл: internal/integrations/stripe/client_test.go
package stripe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCreatePaymentIntent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/payment_intents", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_123", r.Header.Get("Authorization"))
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "4999", r.PostForm.Get("amount"))
		assert.Equal(t, "usd", r.PostForm.Get("currency"))
		assert.Equal(t, "42", r.PostForm.Get("metadata[client_id]"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"pi_123","status":"requires_payment_method","client_secret":"pi_123_secret","amount":4999,"currency":"usd"}`))
	}))
	defer server.Close()

	client := New(server.URL, "sk_test_123", zap.NewNop())

	intent, err := client.CreatePaymentIntent(context.Background(), 4999, "USD", map[string]string{"client_id": "42"})
	require.NoError(t, err)
	assert.Equal(t, "pi_123", intent.ID)
	assert.Equal(t, "requires_payment_method", intent.Status)
	assert.Equal(t, int64(4999), intent.Amount)
}

func TestCreateRefundFullAmount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "pi_123", r.PostForm.Get("payment_intent"))
		// При полном возврате сумма не передается.
		assert.Empty(t, r.PostForm.Get("amount"))

		_, _ = w.Write([]byte(`{"id":"re_123","status":"succeeded"}`))
	}))
	defer server.Close()

	client := New(server.URL, "sk_test_123", zap.NewNop())

	refund, err := client.CreateRefund(context.Background(), "pi_123", 0)
	require.NoError(t, err)
	assert.Equal(t, "succeeded", refund.Status)
}

func TestAPIErrorMessageSurfaced(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte(`{"error":{"type":"card_error","message":"Your card was declined."}}`))
	}))
	defer server.Close()

	client := New(server.URL, "sk_test_123", zap.NewNop())

	_, err := client.GetPaymentIntent(context.Background(), "pi_123")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Your card was declined.")
}

func TestHealthcheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/balance", r.URL.Path)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := New(server.URL, "sk_test_123", zap.NewNop())
	assert.NoError(t, client.Healthcheck(context.Background()))
}
