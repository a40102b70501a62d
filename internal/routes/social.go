package routes

import (
	"github.com/labstack/echo/v4"

	"ai-assistant/internal/controllers"
)

func runSocialRouter(secureGroup *echo.Group, socialCtrl *controllers.SocialController) {
	secureGroup.POST("/social/posts", socialCtrl.Post)
	secureGroup.GET("/social/posts", socialCtrl.GetPosts)
}
