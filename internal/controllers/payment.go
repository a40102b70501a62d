// Файл: internal/controllers/payment.go
package controllers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"ai-assistant/internal/dto"
	"ai-assistant/internal/services"
	apperrors "ai-assistant/pkg/errors"
	"ai-assistant/pkg/utils"
)

type PaymentController struct {
	paymentService services.PaymentServiceInterface
	logger         *zap.Logger
}

func NewPaymentController(paymentService services.PaymentServiceInterface, logger *zap.Logger) *PaymentController {
	return &PaymentController{paymentService: paymentService, logger: logger}
}

func (c *PaymentController) CreatePayment(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var payload dto.CreatePaymentDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Неверный формат данных"), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError(err.Error()), c.logger)
	}

	res, err := c.paymentService.CreatePayment(reqCtx, payload)
	if err != nil {
		c.logger.Error("Ошибка при создании платежа", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, res, "Платеж создан", http.StatusCreated)
}

func (c *PaymentController) GetStatus(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Некорректный ID транзакции"), c.logger)
	}

	res, err := c.paymentService.GetStatus(reqCtx, id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, res, "Статус платежа получен", http.StatusOK)
}

func (c *PaymentController) Refund(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Некорректный ID транзакции"), c.logger)
	}

	var payload dto.RefundPaymentDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Неверный формат данных"), c.logger)
	}

	if err := c.paymentService.Refund(reqCtx, id, payload); err != nil {
		c.logger.Error("Ошибка при возврате платежа", zap.Error(err), zap.Uint64("id", id))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, nil, "Возврат выполнен", http.StatusOK)
}

func (c *PaymentController) GetTransactions(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	clientID, err := clientIDFromQuery(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	filter := utils.ParseFilterFromQuery(ctx.QueryParams())

	transactions, total, err := c.paymentService.GetTransactions(reqCtx, clientID, filter)
	if err != nil {
		c.logger.Error("Ошибка при получении транзакций", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, transactions, "Список транзакций получен", http.StatusOK, total)
}

func (c *PaymentController) GetStats(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	clientID, err := clientIDFromQuery(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	from, to, err := periodFromQuery(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.paymentService.GetStats(reqCtx, clientID, from, to)
	if err != nil {
		c.logger.Error("Ошибка при получении статистики платежей", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, res, "Статистика платежей получена", http.StatusOK)
}

// HandleWebhook принимает вебхуки провайдеров. Маршрут не защищен
// JWT: подлинность проверяется подписью или повторным запросом к
// провайдеру внутри сервиса.
func (c *PaymentController) HandleWebhook(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	provider := ctx.Param("provider")

	body, err := io.ReadAll(ctx.Request().Body)
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Не удалось прочитать тело запроса"), c.logger)
	}

	if err := c.paymentService.HandleWebhook(reqCtx, provider, body, ctx.Request().Header); err != nil {
		c.logger.Warn("Вебхук отклонен",
			zap.String("provider", provider), zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	// Провайдеры ждут 200, иначе будут ретраить.
	return ctx.NoContent(http.StatusOK)
}
