// Файл: internal/services/pricing.go
package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"ai-assistant/internal/repositories"
	apperrors "ai-assistant/pkg/errors"
)

// Тарифные планы.
const (
	PlanFree    = "free"
	PlanStarter = "starter"
	PlanPro     = "pro"
	PlanScale   = "scale"
)

// Plan - тарифный план с месячными лимитами.
type Plan struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
	// Лимиты в месяц; 0 = без ограничений.
	ChatMessagesLimit uint64 `json:"chat_messages_limit"`
	MessagesLimit     uint64 `json:"messages_limit"`
	LeadsLimit        uint64 `json:"leads_limit"`
	CrmSyncLimit      uint64 `json:"crm_sync_limit"`
}

// Комиссии провайдеров: процент в базисных пунктах плюс фикс в центах.
// Stripe 2.9% + 30c, Coinbase 1%, BitPay 1%, PayPal 3.49% + 49c.
var providerFees = map[string]struct {
	PercentBps int64
	FixedCents int64
}{
	ProviderStripe:   {PercentBps: 290, FixedCents: 30},
	ProviderCoinbase: {PercentBps: 100, FixedCents: 0},
	ProviderBitPay:   {PercentBps: 100, FixedCents: 0},
	ProviderPayPal:   {PercentBps: 349, FixedCents: 49},
}

var plans = []Plan{
	{ID: PlanFree, Name: "Free", PriceCents: 0, ChatMessagesLimit: 100, MessagesLimit: 50, LeadsLimit: 25, CrmSyncLimit: 25},
	{ID: PlanStarter, Name: "Starter", PriceCents: 2900, ChatMessagesLimit: 2000, MessagesLimit: 1000, LeadsLimit: 500, CrmSyncLimit: 500},
	{ID: PlanPro, Name: "Pro", PriceCents: 9900, ChatMessagesLimit: 10000, MessagesLimit: 5000, LeadsLimit: 5000, CrmSyncLimit: 5000},
	{ID: PlanScale, Name: "Scale", PriceCents: 29900},
}

// Циклы оплаты. Годовая подписка стоит как десять месяцев.
const (
	BillingMonthly = "monthly"
	BillingYearly  = "yearly"
)

// PromoOffer - промокод со скидкой в процентах на первый период.
type PromoOffer struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	DiscountPct int64  `json:"discount_pct"`
	// Пустой список = применим к любому платному плану.
	Plans []string `json:"plans,omitempty"`
}

var promoOffers = []PromoOffer{
	{Code: "WELCOME20", Description: "Скидка 20% на первый период для новых клиентов", DiscountPct: 20},
	{Code: "SCALE50", Description: "Скидка 50% на первый период плана Scale", DiscountPct: 50, Plans: []string{PlanScale}},
}

// Quote - итоговая цена плана за период с учетом промокода.
type Quote struct {
	PlanID        string `json:"plan_id"`
	BillingCycle  string `json:"billing_cycle"`
	BaseCents     int64  `json:"base_cents"`
	DiscountCents int64  `json:"discount_cents"`
	TotalCents    int64  `json:"total_cents"`
	PromoCode     string `json:"promo_code,omitempty"`
}

// UsageReport - текущее потребление клиента против лимитов плана.
type UsageReport struct {
	PlanID       string           `json:"plan_id"`
	Period       string           `json:"period"`
	Usage        map[string]uint64 `json:"usage"`
	Limits       map[string]uint64 `json:"limits"`
	OverLimit    []string         `json:"over_limit,omitempty"`
}

// FeeBreakdown - расчет комиссии провайдера для суммы.
type FeeBreakdown struct {
	Provider    string `json:"provider"`
	AmountCents int64  `json:"amount_cents"`
	FeeCents    int64  `json:"fee_cents"`
	NetCents    int64  `json:"net_cents"`
}

type PricingServiceInterface interface {
	GetPlans() []Plan
	FindPlan(planID string) (*Plan, error)
	GetOffers() []PromoOffer
	QuotePlan(planID, cycle, promoCode string) (*Quote, error)
	CalculateFee(provider string, amountCents int64) (*FeeBreakdown, error)
	CompareFees(amountCents int64) []FeeBreakdown
	GetUsage(ctx context.Context, clientID uint64, planID string) (*UsageReport, error)
	CheckLimit(ctx context.Context, clientID uint64, planID, resource string) error
}

type PricingService struct {
	leadRepo    repositories.LeadRepositoryInterface
	messageRepo repositories.MessageRepositoryInterface
	syncRepo    repositories.CrmSyncRepositoryInterface
	cacheRepo   repositories.CacheRepositoryInterface
	logger      *zap.Logger
}

func NewPricingService(
	leadRepo repositories.LeadRepositoryInterface,
	messageRepo repositories.MessageRepositoryInterface,
	syncRepo repositories.CrmSyncRepositoryInterface,
	cacheRepo repositories.CacheRepositoryInterface,
	logger *zap.Logger,
) PricingServiceInterface {
	return &PricingService{
		leadRepo:    leadRepo,
		messageRepo: messageRepo,
		syncRepo:    syncRepo,
		cacheRepo:   cacheRepo,
		logger:      logger,
	}
}

func (s *PricingService) GetPlans() []Plan {
	out := make([]Plan, len(plans))
	copy(out, plans)
	return out
}

func (s *PricingService) FindPlan(planID string) (*Plan, error) {
	for i := range plans {
		if plans[i].ID == planID {
			plan := plans[i]
			return &plan, nil
		}
	}
	return nil, apperrors.NewNotFoundError("тарифный план '" + planID + "' не найден")
}

func (s *PricingService) GetOffers() []PromoOffer {
	out := make([]PromoOffer, len(promoOffers))
	copy(out, promoOffers)
	return out
}

func promoApplies(offer PromoOffer, planID string) bool {
	if len(offer.Plans) == 0 {
		return true
	}
	for _, p := range offer.Plans {
		if p == planID {
			return true
		}
	}
	return false
}

// QuotePlan считает цену плана за период. Годовой цикл стоит как
// десять месячных, промокод снимает процент от базовой цены.
func (s *PricingService) QuotePlan(planID, cycle, promoCode string) (*Quote, error) {
	plan, err := s.FindPlan(planID)
	if err != nil {
		return nil, err
	}

	if cycle == "" {
		cycle = BillingMonthly
	}
	base := plan.PriceCents
	switch cycle {
	case BillingMonthly:
	case BillingYearly:
		base = plan.PriceCents * 10
	default:
		return nil, apperrors.NewBadRequestError("неизвестный цикл оплаты: " + cycle)
	}

	quote := &Quote{
		PlanID:       plan.ID,
		BillingCycle: cycle,
		BaseCents:    base,
		TotalCents:   base,
	}

	if promoCode != "" {
		var offer *PromoOffer
		for i := range promoOffers {
			if promoOffers[i].Code == promoCode {
				offer = &promoOffers[i]
				break
			}
		}
		if offer == nil {
			return nil, apperrors.NewBadRequestError("промокод '" + promoCode + "' не найден")
		}
		if base == 0 {
			return nil, apperrors.NewBadRequestError("промокод неприменим к бесплатному плану")
		}
		if !promoApplies(*offer, plan.ID) {
			return nil, apperrors.NewBadRequestError("промокод '" + promoCode + "' не действует для плана " + plan.ID)
		}
		quote.PromoCode = offer.Code
		quote.DiscountCents = base * offer.DiscountPct / 100
		quote.TotalCents = base - quote.DiscountCents
	}

	return quote, nil
}

// CalculateFee считает комиссию провайдера. Процентная часть округляется
// вверх, как это делают сами провайдеры.
func (s *PricingService) CalculateFee(provider string, amountCents int64) (*FeeBreakdown, error) {
	fee, ok := providerFees[provider]
	if !ok {
		return nil, apperrors.NewBadRequestError("неизвестный провайдер: " + provider)
	}

	percentPart := (amountCents*fee.PercentBps + 9999) / 10000
	feeCents := percentPart + fee.FixedCents

	return &FeeBreakdown{
		Provider:    provider,
		AmountCents: amountCents,
		FeeCents:    feeCents,
		NetCents:    amountCents - feeCents,
	}, nil
}

// CompareFees возвращает комиссии всех провайдеров для суммы,
// чтобы клиент мог выбрать самый дешевый способ.
func (s *PricingService) CompareFees(amountCents int64) []FeeBreakdown {
	providers := []string{ProviderStripe, ProviderCoinbase, ProviderBitPay, ProviderPayPal}
	breakdowns := make([]FeeBreakdown, 0, len(providers))
	for _, provider := range providers {
		breakdown, err := s.CalculateFee(provider, amountCents)
		if err != nil {
			continue
		}
		breakdowns = append(breakdowns, *breakdown)
	}
	return breakdowns
}

func (s *PricingService) GetUsage(ctx context.Context, clientID uint64, planID string) (*UsageReport, error) {
	plan, err := s.FindPlan(planID)
	if err != nil {
		return nil, err
	}

	leads, err := s.leadRepo.CountByStatus(ctx, clientID, "")
	if err != nil {
		return nil, err
	}
	messages, err := s.messageRepo.CountSent(ctx, clientID)
	if err != nil {
		return nil, err
	}
	syncs, err := s.syncRepo.CountSyncs(ctx, clientID)
	if err != nil {
		return nil, err
	}

	var chatMessages uint64
	if raw, err := s.cacheRepo.Get(ctx, chatCounterKey(clientID)); err == nil {
		if n, err := strconv.ParseUint(raw, 10, 64); err == nil {
			chatMessages = n
		}
	}

	report := &UsageReport{
		PlanID: plan.ID,
		Period: time.Now().Format("2006-01"),
		Usage: map[string]uint64{
			"chat_messages": chatMessages,
			"messages":      messages,
			"leads":         leads,
			"crm_syncs":     syncs,
		},
		Limits: map[string]uint64{
			"chat_messages": plan.ChatMessagesLimit,
			"messages":      plan.MessagesLimit,
			"leads":         plan.LeadsLimit,
			"crm_syncs":     plan.CrmSyncLimit,
		},
	}

	for resource, used := range report.Usage {
		limit := report.Limits[resource]
		if limit > 0 && used >= limit {
			report.OverLimit = append(report.OverLimit, resource)
		}
	}

	return report, nil
}

// CheckLimit возвращает ошибку 402, если ресурс исчерпан по плану.
func (s *PricingService) CheckLimit(ctx context.Context, clientID uint64, planID, resource string) error {
	report, err := s.GetUsage(ctx, clientID, planID)
	if err != nil {
		return err
	}

	limit, ok := report.Limits[resource]
	if !ok {
		return apperrors.NewBadRequestError("неизвестный ресурс: " + resource)
	}
	if limit > 0 && report.Usage[resource] >= limit {
		return apperrors.NewHttpError(402,
			fmt.Sprintf("Лимит '%s' по плану %s исчерпан", resource, planID), nil, nil)
	}
	return nil
}
