// Файл: internal/controllers/messaging.go
package controllers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"ai-assistant/internal/dto"
	"ai-assistant/internal/services"
	apperrors "ai-assistant/pkg/errors"
	"ai-assistant/pkg/utils"
)

type MessagingController struct {
	messagingService services.MessagingServiceInterface
	logger           *zap.Logger
}

func NewMessagingController(messagingService services.MessagingServiceInterface, logger *zap.Logger) *MessagingController {
	return &MessagingController{messagingService: messagingService, logger: logger}
}

func (c *MessagingController) SendEmail(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var payload dto.SendEmailDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Неверный формат данных"), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError(err.Error()), c.logger)
	}

	if err := c.messagingService.SendEmail(reqCtx, payload); err != nil {
		c.logger.Error("Ошибка при отправке письма", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, nil, "Письмо отправлено", http.StatusOK)
}

func (c *MessagingController) SendSMS(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var payload dto.SendSMSDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Неверный формат данных"), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError(err.Error()), c.logger)
	}

	if err := c.messagingService.SendSMS(reqCtx, payload); err != nil {
		c.logger.Error("Ошибка при отправке SMS", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, nil, "SMS отправлено", http.StatusOK)
}

func (c *MessagingController) SendBulk(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var payload dto.SendBulkDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Неверный формат данных"), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError(err.Error()), c.logger)
	}

	res, err := c.messagingService.SendBulkEmail(reqCtx, payload)
	if err != nil {
		c.logger.Error("Ошибка при массовой рассылке", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, res, "Рассылка выполнена", http.StatusOK)
}

func (c *MessagingController) CreateTemplate(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var payload dto.CreateTemplateDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Неверный формат данных"), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError(err.Error()), c.logger)
	}

	res, err := c.messagingService.CreateTemplate(reqCtx, payload)
	if err != nil {
		c.logger.Error("Ошибка при создании шаблона", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, res, "Шаблон создан", http.StatusCreated)
}

func (c *MessagingController) GetTemplates(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	clientID, err := clientIDFromQuery(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	filter := utils.ParseFilterFromQuery(ctx.QueryParams())

	templates, total, err := c.messagingService.GetTemplates(reqCtx, clientID, filter)
	if err != nil {
		c.logger.Error("Ошибка при получении шаблонов", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, templates, "Список шаблонов получен", http.StatusOK, total)
}

func (c *MessagingController) DeleteTemplate(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Некорректный ID шаблона"), c.logger)
	}

	if err := c.messagingService.DeleteTemplate(reqCtx, id); err != nil {
		c.logger.Error("Ошибка при удалении шаблона", zap.Error(err), zap.Uint64("id", id))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return ctx.NoContent(http.StatusNoContent)
}

func (c *MessagingController) GetMessageLogs(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	clientID, err := clientIDFromQuery(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	filter := utils.ParseFilterFromQuery(ctx.QueryParams())

	logs, total, err := c.messagingService.GetMessageLogs(reqCtx, clientID, filter)
	if err != nil {
		c.logger.Error("Ошибка при получении логов сообщений", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, logs, "Логи сообщений получены", http.StatusOK, total)
}

func (c *MessagingController) GetAnalytics(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	clientID, err := clientIDFromQuery(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	from, to, err := periodFromQuery(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.messagingService.GetAnalytics(reqCtx, clientID, from, to)
	if err != nil {
		c.logger.Error("Ошибка при получении аналитики рассылок", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, res, "Аналитика рассылок получена", http.StatusOK)
}
