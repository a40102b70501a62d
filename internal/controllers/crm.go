// Файл: internal/controllers/crm.go
package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"ai-assistant/internal/dto"
	"ai-assistant/internal/services"
	apperrors "ai-assistant/pkg/errors"
	"ai-assistant/pkg/utils"
)

type CrmController struct {
	crmService services.CrmServiceInterface
	logger     *zap.Logger
}

func NewCrmController(crmService services.CrmServiceInterface, logger *zap.Logger) *CrmController {
	return &CrmController{crmService: crmService, logger: logger}
}

func (c *CrmController) SyncContact(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var payload dto.SyncContactDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Неверный формат данных"), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError(err.Error()), c.logger)
	}

	results, err := c.crmService.SyncContact(reqCtx, payload)
	if err != nil {
		c.logger.Error("Ошибка при синхронизации контакта", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, results, "Синхронизация выполнена", http.StatusOK)
}

func (c *CrmController) SearchContact(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	clientID, err := clientIDFromQuery(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	email := ctx.QueryParam("email")
	if !utils.IsValidEmail(email) {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Параметр email обязателен"), c.logger)
	}

	results, err := c.crmService.SearchContact(reqCtx, clientID, email)
	if err != nil {
		c.logger.Error("Ошибка при поиске контакта", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, results, "Поиск выполнен", http.StatusOK)
}

func (c *CrmController) PlatformStatuses(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	statuses := c.crmService.PlatformStatuses(reqCtx)
	return utils.SuccessResponse(ctx, statuses, "Статусы CRM-платформ получены", http.StatusOK)
}

func (c *CrmController) GetSyncRecords(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	clientID, err := clientIDFromQuery(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	filter := utils.ParseFilterFromQuery(ctx.QueryParams())

	records, total, err := c.crmService.GetSyncRecords(reqCtx, clientID, filter)
	if err != nil {
		c.logger.Error("Ошибка при получении истории синхронизаций", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, records, "История синхронизаций получена", http.StatusOK, total)
}
