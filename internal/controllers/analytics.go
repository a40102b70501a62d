// Файл: internal/controllers/analytics.go
package controllers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"ai-assistant/internal/dto"
	"ai-assistant/internal/services"
	apperrors "ai-assistant/pkg/errors"
	"ai-assistant/pkg/utils"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type AnalyticsController struct {
	analyticsService services.AnalyticsServiceInterface
	logger           *zap.Logger
}

func NewAnalyticsController(analyticsService services.AnalyticsServiceInterface, logger *zap.Logger) *AnalyticsController {
	return &AnalyticsController{analyticsService: analyticsService, logger: logger}
}

func (c *AnalyticsController) GenerateReport(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var payload dto.ReportRequestDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Неверный формат данных"), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError(err.Error()), c.logger)
	}

	report, err := c.analyticsService.GenerateReport(reqCtx, payload)
	if err != nil {
		c.logger.Error("Ошибка при построении отчета", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, report, "Отчет построен", http.StatusOK)
}

func (c *AnalyticsController) ExportReport(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var payload dto.ReportRequestDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Неверный формат данных"), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError(err.Error()), c.logger)
	}

	data, fileName, err := c.analyticsService.ExportReportXLSX(reqCtx, payload)
	if err != nil {
		c.logger.Error("Ошибка при экспорте отчета", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, fileName))
	return ctx.Blob(http.StatusOK, xlsxMIME, data)
}

func (c *AnalyticsController) GetLatestSnapshot(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	clientID, err := clientIDFromQuery(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	snapshot, err := c.analyticsService.GetLatestSnapshot(reqCtx, clientID)
	if err != nil {
		c.logger.Error("Ошибка при получении снимка метрик", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, snapshot, "Снимок метрик получен", http.StatusOK)
}
