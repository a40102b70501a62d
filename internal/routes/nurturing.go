package routes

import (
	"github.com/labstack/echo/v4"

	"ai-assistant/internal/controllers"
)

func runNurturingRouter(secureGroup *echo.Group, nurturingCtrl *controllers.NurturingController) {
	secureGroup.POST("/campaigns", nurturingCtrl.StartCampaign)
	secureGroup.GET("/campaigns", nurturingCtrl.GetCampaigns)
	secureGroup.GET("/campaigns/:id/progress", nurturingCtrl.GetProgress)
	secureGroup.PUT("/campaigns/:id/pause", nurturingCtrl.PauseCampaign)
	secureGroup.PUT("/campaigns/:id/resume", nurturingCtrl.ResumeCampaign)
}
