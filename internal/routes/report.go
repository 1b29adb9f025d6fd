package routes

import (
	"dispatch-system/internal/controllers"

	"github.com/labstack/echo/v4"
)

func runReportRouter(secureGroup *echo.Group, reportCtrl *controllers.ReportController) {
	{
		secureGroup.POST("/tasks/:id/report", reportCtrl.Submit)
		secureGroup.POST("/tasks/:id/report/review", reportCtrl.Review)
		secureGroup.GET("/tasks/:id/reports", reportCtrl.List)
	}
}
