// Файл: internal/controllers/plugin.go
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

type PluginController struct {
	pluginService services.PluginServiceInterface
	logger        *zap.Logger
}

func NewPluginController(pluginService services.PluginServiceInterface, logger *zap.Logger) *PluginController {
	return &PluginController{pluginService: pluginService, logger: logger}
}

func (c *PluginController) Statuses(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	clientID, err := clientIDFromQuery(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	statuses, err := c.pluginService.Statuses(reqCtx, clientID)
	if err != nil {
		c.logger.Error("Ошибка при получении статусов плагинов", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, statuses, "Статусы плагинов получены", http.StatusOK)
}

func (c *PluginController) Toggle(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var payload dto.TogglePluginDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Неверный формат данных"), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError(err.Error()), c.logger)
	}

	if err := c.pluginService.Toggle(reqCtx, payload.ClientID, payload.Name, *payload.Enabled); err != nil {
		c.logger.Error("Ошибка при переключении плагина",
			zap.Error(err),
			zap.Uint64("client_id", payload.ClientID),
			zap.String("plugin", payload.Name),
		)
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, nil, "Состояние плагина обновлено", http.StatusOK)
}
