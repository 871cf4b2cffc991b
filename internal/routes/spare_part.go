package routes

import (
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"optilab/internal/controllers"
	"optilab/internal/services"
)

func runSparePartRouter(secureGroup *echo.Group, sparePartService services.SparePartServiceInterface, loc *time.Location, logger *zap.Logger) {
	ctrl := controllers.NewSparePartController(sparePartService, loc, logger)

	spareParts := secureGroup.Group("/spare-parts")
	spareParts.GET("", ctrl.GetSpareParts)
	spareParts.POST("", ctrl.CreateSparePart)
	spareParts.GET("/:id", ctrl.FindSparePart)
	spareParts.PATCH("/:id", ctrl.UpdateSparePart)
	spareParts.DELETE("/:id", ctrl.DeleteSparePart)
}
