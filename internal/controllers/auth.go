// Файл: internal/controllers/auth.go
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

type AuthController struct {
	authService services.AuthServiceInterface
	logger      *zap.Logger
}

func NewAuthController(authService services.AuthServiceInterface, logger *zap.Logger) *AuthController {
	return &AuthController{authService: authService, logger: logger}
}

func (c *AuthController) Login(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var payload dto.LoginDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Неверный формат данных"), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError(err.Error()), c.logger)
	}

	res, err := c.authService.Login(reqCtx, payload)
	if err != nil {
		c.logger.Warn("Неудачная попытка входа", zap.String("email", payload.Email))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, res, "Вход выполнен", http.StatusOK)
}

func (c *AuthController) Refresh(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var payload dto.RefreshTokenDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Неверный формат данных"), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError(err.Error()), c.logger)
	}

	res, err := c.authService.Refresh(reqCtx, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, res, "Токены обновлены", http.StatusOK)
}

func (c *AuthController) Me(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	userID, err := utils.GetUserIDFromCtx(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.ErrUnauthorized, c.logger)
	}

	user, err := c.authService.GetUserByID(reqCtx, uint64(userID))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res := dto.UserPublicDTO{
		ID:       user.ID,
		FullName: user.FullName,
		Email:    user.Email,
		Role:     user.Role,
		ClientID: user.ClientID,
		PlanID:   user.PlanID,
	}
	return utils.SuccessResponse(ctx, res, "Профиль получен", http.StatusOK)
}
