package routes

import (
	"github.com/labstack/echo/v4"

	"ai-assistant/internal/controllers"
)

func runOnboardingRouter(secureGroup *echo.Group, onboardingCtrl *controllers.OnboardingController) {
	secureGroup.POST("/onboarding", onboardingCtrl.Init)
	secureGroup.GET("/onboarding", onboardingCtrl.GetProgress)
	secureGroup.PUT("/onboarding/:id/step", onboardingCtrl.UpdateStep)

	secureGroup.POST("/tickets", onboardingCtrl.CreateTicket)
	secureGroup.GET("/tickets", onboardingCtrl.GetTickets)
	secureGroup.PUT("/tickets/:id/resolve", onboardingCtrl.ResolveTicket)
}
