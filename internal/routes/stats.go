package routes

import (
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"optilab/internal/controllers"
	"optilab/internal/services"
)

func runStatsRouter(
	secureGroup *echo.Group,
	statsService services.StatsServiceInterface,
	overdueService services.OverdueServiceInterface,
	loc *time.Location,
	logger *zap.Logger,
) {
	ctrl := controllers.NewStatsController(statsService, overdueService, loc, logger)

	secureGroup.GET("/stats", ctrl.GetStats)
	secureGroup.GET("/jobs/overdue", ctrl.GetOverdue)
}
