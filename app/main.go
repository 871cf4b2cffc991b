// Файл: main.go

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"optilab/internal/repositories"
	"optilab/internal/routes"
	"optilab/internal/services"
	"optilab/internal/workflow"
	"optilab/migrations"
	"optilab/pkg/api"
	"optilab/pkg/config"
	"optilab/pkg/customvalidator"
	"optilab/pkg/database/postgresql"
	apperrors "optilab/pkg/errors"
	"optilab/pkg/eventbus"
	applogger "optilab/pkg/logger"
	appmiddleware "optilab/pkg/middleware"
	"optilab/pkg/service"
)

func main() {
	// 1. Конфиг и логгер
	cfg := config.New()
	logger := applogger.NewLogger(cfg.Log.Level, cfg.Log.File)
	defer logger.Sync()

	loggers := &routes.Loggers{
		Main:      logger,
		Auth:      logger.Named("auth"),
		Job:       logger.Named("job"),
		SparePart: logger.Named("spare_part"),
		Stats:     logger.Named("stats"),
	}

	// 2. Хранилище
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	stores := routes.Stores{}
	switch cfg.Store.Driver {
	case "memory":
		store := repositories.NewMemoryStore()
		stores.Jobs, stores.SpareParts = store, store
		logger.Warn("Используется хранилище в памяти: данные не переживут перезапуск")
	case "postgres":
		dbConn, err := postgresql.ConnectDB(ctx, cfg.Postgres.DSN, logger)
		if err != nil {
			logger.Fatal("Не удалось подключиться к PostgreSQL", zap.Error(err))
		}
		defer dbConn.Close()

		if cfg.Postgres.AutoMigrate {
			if err := postgresql.Migrate(ctx, dbConn, migrations.FS, logger); err != nil {
				logger.Fatal("Ошибка миграций", zap.Error(err))
			}
		}
		stores.Jobs = repositories.NewJobRepository(dbConn, loggers.Job)
		stores.SpareParts = repositories.NewSparePartRepository(dbConn, loggers.SparePart)
	default:
		logger.Fatal("Неизвестный STORE_DRIVER", zap.String("driver", cfg.Store.Driver))
	}

	// 3. Redis не обязателен: без него статистика считается на каждый запрос
	if cfg.Redis.Address != "" {
		redisClient, err := repositories.NewRedisClient(ctx, cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Warn("Redis недоступен, кэш статистики отключен", zap.Error(err))
		} else {
			defer redisClient.Close()
			stores.Cache = repositories.NewRedisCacheRepository(redisClient)
		}
	}
	cancel()

	// 4. Сервисы и маршруты
	bus := eventbus.New(logger.Named("eventbus"))
	calendar := workflow.NewCalendar(cfg.Workflow.Location, nil)
	svcs := routes.NewServices(stores, bus, calendar, cfg, loggers)
	jwtSvc := service.NewJWTService(cfg.JWT.SecretKey, cfg.JWT.AccessTokenTTL)

	e := echo.New()
	e.HideBanner = true
	e.Validator = customvalidator.New()

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		DisableStackAll: true,
		StackSize:       1 << 10,
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			logger.Error("!!! ОБНАРУЖЕНА ПАНИКА (PANIC) !!!",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Error(err),
				zap.String("stack", string(stack)),
			)
			if !c.Response().Committed {
				httpErr := apperrors.NewHttpError(http.StatusInternalServerError, "Внутренняя ошибка сервера", err, nil)
				_ = api.ErrorResponse(c, httpErr, logger)
			}
			return err
		},
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, appmiddleware.HeaderRequestID},
		AllowCredentials: true,
		ExposeHeaders:    []string{echo.HeaderContentDisposition, appmiddleware.HeaderRequestID},
	}))
	e.Use(appmiddleware.InjectLogger(logger))

	routes.InitRouter(e, svcs, jwtSvc, loggers, cfg)

	// 5. Плановая проверка просрочек
	scheduler, err := services.StartOverdueScheduler(svcs.Overdue, cfg.Workflow.OverdueScanSchedule, loggers.Stats)
	if err != nil {
		logger.Fatal("Неверное расписание OVERDUE_SCAN_SCHEDULE", zap.Error(err))
	}

	// 6. Запуск и остановка по сигналу
	go func() {
		addr := ":" + cfg.Server.Port
		logger.Info("🚀 Сервер запущен", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Ошибка запуска сервера", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info("Остановка сервера...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Ошибка остановки HTTP-сервера", zap.Error(err))
	}
	if scheduler != nil {
		<-scheduler.Stop().Done()
	}
	bus.Wait()
	logger.Info("Сервер остановлен")
}
