// Файл: internal/controllers/whitelabel.go
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

type WhitelabelController struct {
	wlService services.WhitelabelServiceInterface
	logger    *zap.Logger
}

func NewWhitelabelController(wlService services.WhitelabelServiceInterface, logger *zap.Logger) *WhitelabelController {
	return &WhitelabelController{wlService: wlService, logger: logger}
}

// actorFromCtx достает ID пользователя для истории изменений.
// Отсутствие пользователя не ошибка: изменение может прийти от системы.
func actorFromCtx(ctx echo.Context) *uint64 {
	userID, err := utils.GetUserIDFromCtx(ctx.Request().Context())
	if err != nil || userID <= 0 {
		return nil
	}
	id := uint64(userID)
	return &id
}

func (c *WhitelabelController) GetClients(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	filter := utils.ParseFilterFromQuery(ctx.QueryParams())

	clients, total, err := c.wlService.GetClients(reqCtx, filter)
	if err != nil {
		c.logger.Error("Ошибка при получении списка клиентов", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, clients, "Список клиентов получен", http.StatusOK, total)
}

func (c *WhitelabelController) FindClient(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Некорректный ID клиента"), c.logger)
	}

	client, err := c.wlService.FindClient(reqCtx, id)
	if err != nil {
		c.logger.Error("Ошибка при поиске клиента", zap.Error(err), zap.Uint64("id", id))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, client, "Клиент найден", http.StatusOK)
}

func (c *WhitelabelController) CreateClient(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var payload dto.CreateClientDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Неверный формат данных"), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError(err.Error()), c.logger)
	}

	client, err := c.wlService.CreateClient(reqCtx, payload)
	if err != nil {
		c.logger.Error("Ошибка при создании клиента", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, client, "Клиент создан", http.StatusCreated)
}

func (c *WhitelabelController) SetActive(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Некорректный ID клиента"), c.logger)
	}

	var payload dto.SetActiveDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Неверный формат данных"), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError(err.Error()), c.logger)
	}

	if err := c.wlService.SetActive(reqCtx, id, *payload.IsActive, actorFromCtx(ctx)); err != nil {
		c.logger.Error("Ошибка при смене статуса клиента", zap.Error(err), zap.Uint64("id", id))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, nil, "Статус клиента обновлен", http.StatusOK)
}

func (c *WhitelabelController) DeleteClient(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Некорректный ID клиента"), c.logger)
	}

	if err := c.wlService.DeleteClient(reqCtx, id); err != nil {
		c.logger.Error("Ошибка при удалении клиента", zap.Error(err), zap.Uint64("id", id))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return ctx.NoContent(http.StatusNoContent)
}

func (c *WhitelabelController) GetTheme(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	slug := ctx.Param("slug")
	if slug == "" {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Не указан slug клиента"), c.logger)
	}

	theme, err := c.wlService.GetTheme(reqCtx, slug)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, theme, "Тема клиента получена", http.StatusOK)
}

func (c *WhitelabelController) UpdateBranding(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Некорректный ID клиента"), c.logger)
	}

	var payload dto.UpdateBrandingDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Неверный формат данных"), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError(err.Error()), c.logger)
	}

	client, err := c.wlService.UpdateBranding(reqCtx, id, payload, actorFromCtx(ctx))
	if err != nil {
		c.logger.Error("Ошибка при обновлении брендинга", zap.Error(err), zap.Uint64("id", id))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, client, "Брендинг обновлен", http.StatusOK)
}

func (c *WhitelabelController) UpdateFeatures(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Некорректный ID клиента"), c.logger)
	}

	var payload dto.UpdateFeaturesDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Неверный формат данных"), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError(err.Error()), c.logger)
	}

	client, err := c.wlService.UpdateFeatures(reqCtx, id, payload, actorFromCtx(ctx))
	if err != nil {
		c.logger.Error("Ошибка при обновлении фич клиента", zap.Error(err), zap.Uint64("id", id))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, client, "Настройки фич обновлены", http.StatusOK)
}

func (c *WhitelabelController) UpdateIntegrations(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Некорректный ID клиента"), c.logger)
	}

	var payload dto.UpdateIntegrationsDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Неверный формат данных"), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError(err.Error()), c.logger)
	}

	client, err := c.wlService.UpdateIntegrations(reqCtx, id, payload, actorFromCtx(ctx))
	if err != nil {
		c.logger.Error("Ошибка при обновлении интеграций", zap.Error(err), zap.Uint64("id", id))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, client, "Интеграции обновлены", http.StatusOK)
}

func (c *WhitelabelController) UploadLogo(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Некорректный ID клиента"), c.logger)
	}

	fileHeader, err := ctx.FormFile("logo")
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Файл логотипа не найден в запросе"), c.logger)
	}
	file, err := fileHeader.Open()
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewInternalError("Не удалось открыть файл", err), c.logger)
	}
	defer file.Close()

	logoURL, err := c.wlService.UploadLogo(reqCtx, id, file, fileHeader.Filename, actorFromCtx(ctx))
	if err != nil {
		c.logger.Error("Ошибка при загрузке логотипа", zap.Error(err), zap.Uint64("id", id))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, map[string]string{"logo_url": logoURL}, "Логотип загружен", http.StatusOK)
}

func (c *WhitelabelController) RegisterWebhook(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Некорректный ID клиента"), c.logger)
	}

	var payload dto.RegisterWebhookDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Неверный формат данных"), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError(err.Error()), c.logger)
	}

	webhook, err := c.wlService.RegisterWebhook(reqCtx, id, payload)
	if err != nil {
		c.logger.Error("Ошибка при регистрации вебхука", zap.Error(err), zap.Uint64("client_id", id))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, webhook, "Вебхук зарегистрирован", http.StatusCreated)
}

func (c *WhitelabelController) GetWebhooks(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Некорректный ID клиента"), c.logger)
	}

	webhooks, err := c.wlService.GetWebhooks(reqCtx, id)
	if err != nil {
		c.logger.Error("Ошибка при получении вебхуков", zap.Error(err), zap.Uint64("client_id", id))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, webhooks, "Список вебхуков получен", http.StatusOK)
}

func (c *WhitelabelController) DeleteWebhook(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	id, err := strconv.ParseUint(ctx.Param("webhookId"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Некорректный ID вебхука"), c.logger)
	}

	if err := c.wlService.DeleteWebhook(reqCtx, id); err != nil {
		c.logger.Error("Ошибка при удалении вебхука", zap.Error(err), zap.Uint64("id", id))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return ctx.NoContent(http.StatusNoContent)
}

func (c *WhitelabelController) GetChanges(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Некорректный ID клиента"), c.logger)
	}

	limit := uint64(50)
	if raw := ctx.QueryParam("limit"); raw != "" {
		if parsed, parseErr := strconv.ParseUint(raw, 10, 64); parseErr == nil && parsed > 0 {
			limit = parsed
		}
	}

	changes, err := c.wlService.GetChanges(reqCtx, id, limit)
	if err != nil {
		c.logger.Error("Ошибка при получении истории изменений", zap.Error(err), zap.Uint64("client_id", id))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, changes, "История изменений получена", http.StatusOK)
}
