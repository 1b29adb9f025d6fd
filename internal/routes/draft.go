package routes

import (
	"dispatch-system/internal/controllers"

	"github.com/labstack/echo/v4"
)

func runDraftRouter(secureGroup *echo.Group, draftCtrl *controllers.DraftController) {
	{
		secureGroup.POST("/drafts", draftCtrl.Create)
		secureGroup.PUT("/drafts/:id", draftCtrl.Update)
		secureGroup.POST("/drafts/:id/attachments", draftCtrl.StageAttachments)
		secureGroup.POST("/drafts/:id/publish", draftCtrl.Publish)
		secureGroup.DELETE("/drafts/:id", draftCtrl.Discard)
	}
}
