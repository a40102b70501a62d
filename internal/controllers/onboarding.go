// Файл: internal/controllers/onboarding.go
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

type OnboardingController struct {
	onboardingService services.OnboardingServiceInterface
	logger            *zap.Logger
}

func NewOnboardingController(onboardingService services.OnboardingServiceInterface, logger *zap.Logger) *OnboardingController {
	return &OnboardingController{onboardingService: onboardingService, logger: logger}
}

func (c *OnboardingController) Init(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var payload dto.InitOnboardingDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Неверный формат данных"), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError(err.Error()), c.logger)
	}

	progress, err := c.onboardingService.Init(reqCtx, payload)
	if err != nil {
		c.logger.Error("Ошибка при инициализации онбординга", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, progress, "Онбординг инициализирован", http.StatusCreated)
}

func (c *OnboardingController) GetProgress(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	clientID, err := clientIDFromQuery(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	progress, err := c.onboardingService.GetProgress(reqCtx, clientID)
	if err != nil {
		c.logger.Error("Ошибка при получении прогресса онбординга", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, progress, "Прогресс онбординга получен", http.StatusOK)
}

func (c *OnboardingController) UpdateStep(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	clientID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Некорректный ID клиента"), c.logger)
	}

	var payload dto.UpdateStepDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Неверный формат данных"), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError(err.Error()), c.logger)
	}

	progress, err := c.onboardingService.UpdateStep(reqCtx, clientID, payload)
	if err != nil {
		c.logger.Error("Ошибка при обновлении шага онбординга", zap.Error(err), zap.Uint64("client_id", clientID))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, progress, "Шаг онбординга обновлен", http.StatusOK)
}

func (c *OnboardingController) CreateTicket(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var payload dto.CreateTicketDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Неверный формат данных"), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError(err.Error()), c.logger)
	}

	ticket, err := c.onboardingService.CreateTicket(reqCtx, payload)
	if err != nil {
		c.logger.Error("Ошибка при создании тикета", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, ticket, "Тикет создан", http.StatusCreated)
}

func (c *OnboardingController) GetTickets(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	clientID, err := clientIDFromQuery(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	filter := utils.ParseFilterFromQuery(ctx.QueryParams())

	tickets, total, err := c.onboardingService.GetTickets(reqCtx, clientID, filter)
	if err != nil {
		c.logger.Error("Ошибка при получении тикетов", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, tickets, "Список тикетов получен", http.StatusOK, total)
}

func (c *OnboardingController) ResolveTicket(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Некорректный ID тикета"), c.logger)
	}

	if err := c.onboardingService.ResolveTicket(reqCtx, id); err != nil {
		c.logger.Error("Ошибка при закрытии тикета", zap.Error(err), zap.Uint64("id", id))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, nil, "Тикет закрыт", http.StatusOK)
}
