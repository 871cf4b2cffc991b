package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"optilab/internal/listeners"
	"optilab/internal/repositories"
	"optilab/internal/services"
	"optilab/internal/workflow"
	"optilab/pkg/config"
	"optilab/pkg/eventbus"
	"optilab/pkg/middleware"
	"optilab/pkg/service"
)

type Loggers struct {
	Main      *zap.Logger
	Auth      *zap.Logger
	Job       *zap.Logger
	SparePart *zap.Logger
	Stats     *zap.Logger
}

// Stores - реализации хранилища, выбранные по STORE_DRIVER. Cache может быть nil.
type Stores struct {
	Jobs       repositories.JobRepositoryInterface
	SpareParts repositories.SparePartRepositoryInterface
	Cache      repositories.CacheRepositoryInterface
}

type Services struct {
	Job       services.JobServiceInterface
	SparePart services.SparePartServiceInterface
	Stats     services.StatsServiceInterface
	Overdue   services.OverdueServiceInterface
}

// NewServices собирает сервисы и подписывает слушателей на шину.
func NewServices(stores Stores, bus *eventbus.Bus, calendar *workflow.Calendar, cfg *config.Config, loggers *Loggers) *Services {
	base := services.NewBaseService(stores.Cache, bus, loggers.Main)

	if stores.Cache != nil {
		listeners.NewStatsCacheListener(stores.Cache, loggers.Stats).Register(bus)
	}
	listeners.NewActivityListener(loggers.Main).Register(bus)

	return &Services{
		Job:       services.NewJobService(base, stores.Jobs, stores.SpareParts, calendar, loggers.Job),
		SparePart: services.NewSparePartService(base, stores.SpareParts, calendar, loggers.SparePart),
		Stats:     services.NewStatsService(base, stores.Jobs, calendar, cfg.Redis.StatsTTL, loggers.Stats),
		Overdue:   services.NewOverdueService(base, stores.Jobs, calendar, cfg.Workflow.OverdueThresholdHours, loggers.Stats),
	}
}

func InitRouter(e *echo.Echo, svcs *Services, jwtSvc service.JWTService, loggers *Loggers, cfg *config.Config) {
	loggers.Main.Info("InitRouter: Начало создания маршрутов")

	api := e.Group("/api")
	api.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	authMW := middleware.NewAuthMiddleware(jwtSvc, loggers.Auth)
	secureGroup := api.Group("", authMW.Auth)

	loc := cfg.Workflow.Location
	runJobRouter(secureGroup, svcs.Job, loc, loggers.Job)
	runSparePartRouter(secureGroup, svcs.SparePart, loc, loggers.SparePart)
	runStatsRouter(secureGroup, svcs.Stats, svcs.Overdue, loc, loggers.Stats)

	loggers.Main.Info("InitRouter: Создание маршрутов завершено")
}
