package routes

import (
	"github.com/labstack/echo/v4"

	"ai-assistant/internal/controllers"
)

func runLeadRouter(secureGroup *echo.Group, leadCtrl *controllers.LeadController) {
	secureGroup.GET("/leads", leadCtrl.GetLeads)
	secureGroup.GET("/leads/:id", leadCtrl.FindLead)
	secureGroup.POST("/leads", leadCtrl.CreateLead)
	secureGroup.PUT("/leads/:id", leadCtrl.UpdateLead)
	secureGroup.DELETE("/leads/:id", leadCtrl.DeleteLead)
}
