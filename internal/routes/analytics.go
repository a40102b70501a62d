package routes

import (
	"github.com/labstack/echo/v4"

	"ai-assistant/internal/controllers"
)

func runAnalyticsRouter(secureGroup *echo.Group, analyticsCtrl *controllers.AnalyticsController) {
	secureGroup.POST("/analytics/report", analyticsCtrl.GenerateReport)
	secureGroup.POST("/analytics/report/export", analyticsCtrl.ExportReport)
	secureGroup.GET("/analytics/snapshot", analyticsCtrl.GetLatestSnapshot)
}
