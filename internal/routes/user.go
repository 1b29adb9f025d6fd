package routes

import (
	"dispatch-system/internal/controllers"

	"github.com/labstack/echo/v4"
)

func runUserRouter(secureGroup *echo.Group, userCtrl *controllers.UserController) {
	{
		secureGroup.GET("/users", userCtrl.List)
		secureGroup.POST("/users", userCtrl.Create)
		secureGroup.PUT("/users/:id/role", userCtrl.ChangeRole)
	}
}
