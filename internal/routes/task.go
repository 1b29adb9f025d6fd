package routes

import (
	"dispatch-system/internal/controllers"

	"github.com/labstack/echo/v4"
)

func runTaskRouter(secureGroup *echo.Group, taskCtrl *controllers.TaskController) {
	{
		secureGroup.GET("/tasks", taskCtrl.List)
		secureGroup.GET("/tasks/:id", taskCtrl.Get)
		secureGroup.PUT("/tasks/:id", taskCtrl.Update)
		secureGroup.POST("/tasks/:id/accept", taskCtrl.Accept)
		secureGroup.POST("/tasks/:id/en_route", taskCtrl.EnRoute)
		secureGroup.POST("/tasks/:id/arrive", taskCtrl.Arrive)
		secureGroup.POST("/tasks/:id/begin", taskCtrl.Begin)
		secureGroup.GET("/tasks/:id/history", taskCtrl.Timeline)
		secureGroup.GET("/tasks/:id/history/export", taskCtrl.ExportTimeline)
	}
}
