// Файл: internal/services/pricing_test.go
package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "ai-assistant/pkg/errors"
)

func newPricingForTest(leads *fakeLeadRepo, messages *fakeMessageRepo, syncs *fakeCrmSyncRepo, cache *fakeCacheRepo) PricingServiceInterface {
	return NewPricingService(leads, messages, syncs, cache, zap.NewNop())
}

func TestCalculateFee(t *testing.T) {
	svc := newPricingForTest(newFakeLeadRepo(), newFakeMessageRepo(), &fakeCrmSyncRepo{}, newFakeCacheRepo())

	testCases := []struct {
		name     string
		provider string
		amount   int64
		wantFee  int64
	}{
		{name: "stripe 10 долларов", provider: ProviderStripe, amount: 1000, wantFee: 59},
		{name: "coinbase без фикса", provider: ProviderCoinbase, amount: 1000, wantFee: 10},
		{name: "bitpay округление вверх", provider: ProviderBitPay, amount: 1001, wantFee: 11},
		{name: "paypal", provider: ProviderPayPal, amount: 10000, wantFee: 398},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			breakdown, err := svc.CalculateFee(tc.provider, tc.amount)
			require.NoError(t, err)
			assert.Equal(t, tc.wantFee, breakdown.FeeCents)
			assert.Equal(t, tc.amount-tc.wantFee, breakdown.NetCents)
		})
	}

	_, err := svc.CalculateFee("square", 1000)
	require.Error(t, err)
	var httpErr *apperrors.HttpError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, 400, httpErr.Code)
}

func TestCompareFees(t *testing.T) {
	svc := newPricingForTest(newFakeLeadRepo(), newFakeMessageRepo(), &fakeCrmSyncRepo{}, newFakeCacheRepo())

	breakdowns := svc.CompareFees(10000)
	require.Len(t, breakdowns, 4)

	// Для 100 долларов крипта должна быть дешевле карт.
	byProvider := make(map[string]int64)
	for _, b := range breakdowns {
		byProvider[b.Provider] = b.FeeCents
	}
	assert.Less(t, byProvider[ProviderCoinbase], byProvider[ProviderStripe])
	assert.Less(t, byProvider[ProviderBitPay], byProvider[ProviderPayPal])
}

func TestFindPlan(t *testing.T) {
	svc := newPricingForTest(newFakeLeadRepo(), newFakeMessageRepo(), &fakeCrmSyncRepo{}, newFakeCacheRepo())

	plan, err := svc.FindPlan(PlanStarter)
	require.NoError(t, err)
	assert.Equal(t, int64(2900), plan.PriceCents)
	assert.Equal(t, uint64(2000), plan.ChatMessagesLimit)

	_, err = svc.FindPlan("enterprise")
	require.Error(t, err)
	var httpErr *apperrors.HttpError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, 404, httpErr.Code)
}

func TestGetOffers(t *testing.T) {
	svc := newPricingForTest(newFakeLeadRepo(), newFakeMessageRepo(), &fakeCrmSyncRepo{}, newFakeCacheRepo())

	offers := svc.GetOffers()
	require.Len(t, offers, 2)
	assert.Equal(t, "WELCOME20", offers[0].Code)
	assert.Equal(t, int64(50), offers[1].DiscountPct)
}

func TestQuotePlan(t *testing.T) {
	svc := newPricingForTest(newFakeLeadRepo(), newFakeMessageRepo(), &fakeCrmSyncRepo{}, newFakeCacheRepo())

	// Месячный цикл по умолчанию.
	quote, err := svc.QuotePlan(PlanPro, "", "")
	require.NoError(t, err)
	assert.Equal(t, BillingMonthly, quote.BillingCycle)
	assert.Equal(t, int64(9900), quote.TotalCents)

	// Год стоит как десять месяцев.
	quote, err = svc.QuotePlan(PlanPro, BillingYearly, "")
	require.NoError(t, err)
	assert.Equal(t, int64(99000), quote.BaseCents)
	assert.Equal(t, int64(99000), quote.TotalCents)

	_, err = svc.QuotePlan(PlanPro, "weekly", "")
	assert.Error(t, err)

	_, err = svc.QuotePlan("enterprise", BillingMonthly, "")
	assert.Error(t, err)
}

func TestQuotePlanPromo(t *testing.T) {
	svc := newPricingForTest(newFakeLeadRepo(), newFakeMessageRepo(), &fakeCrmSyncRepo{}, newFakeCacheRepo())

	quote, err := svc.QuotePlan(PlanStarter, BillingMonthly, "WELCOME20")
	require.NoError(t, err)
	assert.Equal(t, int64(2900), quote.BaseCents)
	assert.Equal(t, int64(580), quote.DiscountCents)
	assert.Equal(t, int64(2320), quote.TotalCents)

	// Промокод, привязанный к плану, на другие планы не действует.
	_, err = svc.QuotePlan(PlanStarter, BillingMonthly, "SCALE50")
	assert.Error(t, err)

	quote, err = svc.QuotePlan(PlanScale, BillingYearly, "SCALE50")
	require.NoError(t, err)
	assert.Equal(t, int64(149500), quote.TotalCents)

	_, err = svc.QuotePlan(PlanFree, BillingMonthly, "WELCOME20")
	assert.Error(t, err)

	_, err = svc.QuotePlan(PlanStarter, BillingMonthly, "НЕСУЩЕСТВУЮЩИЙ")
	assert.Error(t, err)
}

func TestCheckLimitExhausted(t *testing.T) {
	leads := newFakeLeadRepo()
	leads.countTotal = 25
	svc := newPricingForTest(leads, newFakeMessageRepo(), &fakeCrmSyncRepo{}, newFakeCacheRepo())

	err := svc.CheckLimit(context.Background(), 1, PlanFree, "leads")
	require.Error(t, err)
	var httpErr *apperrors.HttpError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, 402, httpErr.Code)
}

func TestCheckLimitUnlimitedOnScale(t *testing.T) {
	leads := newFakeLeadRepo()
	leads.countTotal = 1000000
	svc := newPricingForTest(leads, newFakeMessageRepo(), &fakeCrmSyncRepo{}, newFakeCacheRepo())

	// На плане Scale лимиты нулевые, то есть без ограничений.
	err := svc.CheckLimit(context.Background(), 1, PlanScale, "leads")
	assert.NoError(t, err)
}

func TestCheckLimitUnknownResource(t *testing.T) {
	svc := newPricingForTest(newFakeLeadRepo(), newFakeMessageRepo(), &fakeCrmSyncRepo{}, newFakeCacheRepo())

	err := svc.CheckLimit(context.Background(), 1, PlanFree, "storage")
	require.Error(t, err)
	var httpErr *apperrors.HttpError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, 400, httpErr.Code)
}

func TestGetUsageReadsChatCounter(t *testing.T) {
	cache := newFakeCacheRepo()
	cache.values[chatCounterKey(7)] = "42"
	svc := newPricingForTest(newFakeLeadRepo(), newFakeMessageRepo(), &fakeCrmSyncRepo{}, cache)

	report, err := svc.GetUsage(context.Background(), 7, PlanPro)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), report.Usage["chat_messages"])
	assert.Empty(t, report.OverLimit)
}
