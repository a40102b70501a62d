// Файл: internal/controllers/nurturing.go
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

type NurturingController struct {
	nurturingService services.NurturingServiceInterface
	logger           *zap.Logger
}

func NewNurturingController(nurturingService services.NurturingServiceInterface, logger *zap.Logger) *NurturingController {
	return &NurturingController{nurturingService: nurturingService, logger: logger}
}

func (c *NurturingController) StartCampaign(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var payload dto.StartCampaignDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Неверный формат данных"), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError(err.Error()), c.logger)
	}

	campaign, err := c.nurturingService.StartCampaign(reqCtx, payload)
	if err != nil {
		c.logger.Error("Ошибка при запуске кампании", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, campaign, "Кампания запущена", http.StatusCreated)
}

func (c *NurturingController) PauseCampaign(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Некорректный ID кампании"), c.logger)
	}

	if err := c.nurturingService.PauseCampaign(reqCtx, id); err != nil {
		c.logger.Error("Ошибка при паузе кампании", zap.Error(err), zap.Uint64("id", id))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, nil, "Кампания поставлена на паузу", http.StatusOK)
}

func (c *NurturingController) ResumeCampaign(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Некорректный ID кампании"), c.logger)
	}

	if err := c.nurturingService.ResumeCampaign(reqCtx, id); err != nil {
		c.logger.Error("Ошибка при возобновлении кампании", zap.Error(err), zap.Uint64("id", id))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, nil, "Кампания возобновлена", http.StatusOK)
}

func (c *NurturingController) GetCampaigns(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	clientID, err := clientIDFromQuery(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	filter := utils.ParseFilterFromQuery(ctx.QueryParams())

	campaigns, total, err := c.nurturingService.GetCampaigns(reqCtx, clientID, filter)
	if err != nil {
		c.logger.Error("Ошибка при получении кампаний", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, campaigns, "Список кампаний получен", http.StatusOK, total)
}

func (c *NurturingController) GetProgress(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Некорректный ID кампании"), c.logger)
	}

	progress, err := c.nurturingService.GetProgress(reqCtx, id)
	if err != nil {
		c.logger.Error("Ошибка при получении прогресса кампании", zap.Error(err), zap.Uint64("id", id))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, progress, "Прогресс кампании получен", http.StatusOK)
}
