package routes

import (
	"dispatch-system/internal/controllers"

	"github.com/labstack/echo/v4"
)

func runReferenceRouter(secureGroup *echo.Group, referenceCtrl *controllers.ReferenceController) {
	{
		secureGroup.GET("/work_types", referenceCtrl.ListWorkTypes)
		secureGroup.POST("/work_types", referenceCtrl.CreateWorkType)
		secureGroup.PUT("/work_types/:id", referenceCtrl.UpdateWorkType)
		secureGroup.DELETE("/work_types/:id", referenceCtrl.DeleteWorkType)
	}
	{
		secureGroup.GET("/equipment", referenceCtrl.ListEquipment)
		secureGroup.POST("/equipment", referenceCtrl.CreateEquipment)
		secureGroup.PUT("/equipment/:id", referenceCtrl.UpdateEquipment)
		secureGroup.DELETE("/equipment/:id", referenceCtrl.DeleteEquipment)
	}
	{
		secureGroup.GET("/companies", referenceCtrl.ListCompanies)
		secureGroup.POST("/companies", referenceCtrl.CreateCompany)
		secureGroup.PUT("/companies/:id", referenceCtrl.UpdateCompany)
		secureGroup.DELETE("/companies/:id", referenceCtrl.DeleteCompany)
		secureGroup.GET("/companies/:id/contacts", referenceCtrl.ListContacts)
	}
	{
		secureGroup.POST("/contacts", referenceCtrl.CreateContact)
		secureGroup.PUT("/contacts/:id", referenceCtrl.UpdateContact)
		secureGroup.DELETE("/contacts/:id", referenceCtrl.DeleteContact)
	}
}
