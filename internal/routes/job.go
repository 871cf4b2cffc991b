package routes

import (
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"optilab/internal/controllers"
	"optilab/internal/services"
)

func runJobRouter(secureGroup *echo.Group, jobService services.JobServiceInterface, loc *time.Location, logger *zap.Logger) {
	jobCtrl := controllers.NewJobController(jobService, loc, logger)
	exportCtrl := controllers.NewExportController(jobService, loc, logger)

	jobs := secureGroup.Group("/jobs")
	jobs.GET("", jobCtrl.GetJobs)
	jobs.POST("", jobCtrl.CreateJob)
	jobs.GET("/export", exportCtrl.ExportJobs)
	jobs.POST("/bulk-status", jobCtrl.BulkStatus)
	jobs.GET("/:id", jobCtrl.FindJob)
	jobs.PATCH("/:id", jobCtrl.UpdateJob)
	jobs.DELETE("/:id", jobCtrl.DeleteJob)
	jobs.GET("/:id/history", jobCtrl.GetJobHistory)
}
