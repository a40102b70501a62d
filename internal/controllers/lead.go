// Файл: internal/controllers/lead.go
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

type LeadController struct {
	leadService services.LeadServiceInterface
	logger      *zap.Logger
}

func NewLeadController(leadService services.LeadServiceInterface, logger *zap.Logger) *LeadController {
	return &LeadController{leadService: leadService, logger: logger}
}

func (c *LeadController) GetLeads(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	clientID, err := clientIDFromQuery(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	filter := utils.ParseFilterFromQuery(ctx.QueryParams())

	leads, total, err := c.leadService.GetLeads(reqCtx, clientID, filter)
	if err != nil {
		c.logger.Error("Ошибка при получении списка лидов", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, leads, "Список лидов получен", http.StatusOK, total)
}

func (c *LeadController) FindLead(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Некорректный ID лида"), c.logger)
	}

	res, err := c.leadService.FindLead(reqCtx, id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, res, "Лид найден", http.StatusOK)
}

func (c *LeadController) CreateLead(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var payload dto.CreateLeadDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Неверный формат данных"), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError(err.Error()), c.logger)
	}

	res, err := c.leadService.CreateLead(reqCtx, payload)
	if err != nil {
		c.logger.Error("Ошибка при создании лида", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, res, "Лид создан", http.StatusCreated)
}

func (c *LeadController) UpdateLead(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Некорректный ID лида"), c.logger)
	}

	var payload dto.UpdateLeadDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Неверный формат данных"), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError(err.Error()), c.logger)
	}

	res, err := c.leadService.UpdateLead(reqCtx, id, payload)
	if err != nil {
		c.logger.Error("Ошибка при обновлении лида", zap.Error(err), zap.Uint64("id", id))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, res, "Лид обновлен", http.StatusOK)
}

func (c *LeadController) DeleteLead(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Некорректный ID лида"), c.logger)
	}

	if err := c.leadService.DeleteLead(reqCtx, id); err != nil {
		c.logger.Error("Ошибка при удалении лида", zap.Error(err), zap.Uint64("id", id))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return ctx.NoContent(http.StatusNoContent)
}
