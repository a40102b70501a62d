// Файл: internal/controllers/chat.go
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

type ChatController struct {
	chatService services.AIChatServiceInterface
	logger      *zap.Logger
}

func NewChatController(chatService services.AIChatServiceInterface, logger *zap.Logger) *ChatController {
	return &ChatController{chatService: chatService, logger: logger}
}

func (c *ChatController) Chat(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var payload dto.ChatMessageDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Неверный формат данных"), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError(err.Error()), c.logger)
	}

	res, err := c.chatService.Chat(reqCtx, payload)
	if err != nil {
		c.logger.Error("Ошибка при обработке сообщения чата", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, res, "Ответ ассистента получен", http.StatusOK)
}

func (c *ChatController) Summarize(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	clientID, err := clientIDFromQuery(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	userID, err := strconv.ParseInt(ctx.QueryParam("user_id"), 10, 64)
	if err != nil || userID == 0 {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Некорректный user_id"), c.logger)
	}

	summary, err := c.chatService.Summarize(reqCtx, clientID, userID)
	if err != nil {
		c.logger.Error("Ошибка при создании резюме диалога", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, map[string]string{"summary": summary}, "Резюме диалога составлено", http.StatusOK)
}

func (c *ChatController) ResetHistory(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	clientID, err := clientIDFromQuery(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	userID, err := strconv.ParseInt(ctx.QueryParam("user_id"), 10, 64)
	if err != nil || userID == 0 {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Некорректный user_id"), c.logger)
	}

	if err := c.chatService.ResetHistory(reqCtx, clientID, userID); err != nil {
		c.logger.Error("Ошибка при сбросе истории чата", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return ctx.NoContent(http.StatusNoContent)
}
