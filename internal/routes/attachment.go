package routes

import (
	"dispatch-system/internal/controllers"

	"github.com/labstack/echo/v4"
)

func runAttachmentRouter(secureGroup *echo.Group, attachmentCtrl *controllers.AttachmentController) {
	uploadGroup := secureGroup.Group("/uploads")
	{
		uploadGroup.POST("", attachmentCtrl.CreateUpload)
		uploadGroup.POST("/sign_part", attachmentCtrl.SignPart)
		uploadGroup.POST("/complete", attachmentCtrl.CompleteUpload)
		uploadGroup.POST("/abort", attachmentCtrl.AbortUpload)
	}
	{
		secureGroup.POST("/tasks/:id/attachments", attachmentCtrl.Add)
		secureGroup.GET("/tasks/:id/attachments", attachmentCtrl.List)
		secureGroup.DELETE("/attachments/:attachmentId", attachmentCtrl.Remove)
	}
}
