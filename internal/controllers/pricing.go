// Файл: internal/controllers/pricing.go
package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"ai-assistant/internal/services"
	apperrors "ai-assistant/pkg/errors"
	"ai-assistant/pkg/utils"
)

type PricingController struct {
	pricingService services.PricingServiceInterface
	logger         *zap.Logger
}

func NewPricingController(pricingService services.PricingServiceInterface, logger *zap.Logger) *PricingController {
	return &PricingController{pricingService: pricingService, logger: logger}
}

func (c *PricingController) GetPlans(ctx echo.Context) error {
	return utils.SuccessResponse(ctx, c.pricingService.GetPlans(), "Тарифные планы получены", http.StatusOK)
}

func (c *PricingController) GetOffers(ctx echo.Context) error {
	return utils.SuccessResponse(ctx, c.pricingService.GetOffers(), "Промо-предложения получены", http.StatusOK)
}

// QuotePlan отвечает на GET /pricing/quote?plan=pro&cycle=yearly&promo=WELCOME20.
func (c *PricingController) QuotePlan(ctx echo.Context) error {
	planID := ctx.QueryParam("plan")
	if planID == "" {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("параметр plan обязателен"), c.logger)
	}

	quote, err := c.pricingService.QuotePlan(planID, ctx.QueryParam("cycle"), ctx.QueryParam("promo"))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, quote, "Стоимость плана рассчитана", http.StatusOK)
}

func (c *PricingController) CompareFees(ctx echo.Context) error {
	amountCents, err := services.AmountToCents(ctx.QueryParam("amount"))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, c.pricingService.CompareFees(amountCents), "Комиссии провайдеров рассчитаны", http.StatusOK)
}

func (c *PricingController) GetUsage(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	clientID, err := clientIDFromQuery(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	planID := ctx.QueryParam("plan")
	if planID == "" {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("параметр plan обязателен"), c.logger)
	}

	report, err := c.pricingService.GetUsage(reqCtx, clientID, planID)
	if err != nil {
		c.logger.Error("Ошибка при расчете потребления", zap.Error(err), zap.Uint64("client_id", clientID))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, report, "Потребление рассчитано", http.StatusOK)
}
