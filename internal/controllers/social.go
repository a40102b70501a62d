// Файл: internal/controllers/social.go
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

type SocialController struct {
	socialService services.SocialServiceInterface
	logger        *zap.Logger
}

func NewSocialController(socialService services.SocialServiceInterface, logger *zap.Logger) *SocialController {
	return &SocialController{socialService: socialService, logger: logger}
}

func (c *SocialController) Post(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var payload dto.SocialPostDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Неверный формат данных"), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError(err.Error()), c.logger)
	}

	results, err := c.socialService.Post(reqCtx, payload)
	if err != nil {
		c.logger.Error("Ошибка при публикации в соцсети", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, results, "Публикация выполнена", http.StatusOK)
}

func (c *SocialController) GetPosts(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	clientID, err := clientIDFromQuery(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	limit := uint64(50)
	if raw := ctx.QueryParam("limit"); raw != "" {
		if parsed, parseErr := strconv.ParseUint(raw, 10, 64); parseErr == nil && parsed > 0 {
			limit = parsed
		}
	}

	posts, err := c.socialService.GetPosts(reqCtx, clientID, limit)
	if err != nil {
		c.logger.Error("Ошибка при получении публикаций", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, posts, "Список публикаций получен", http.StatusOK)
}
