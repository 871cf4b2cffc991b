package controllers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"optilab/internal/services"
	"optilab/pkg/api"
	"optilab/pkg/utils"
)

type StatsController struct {
	statsService   services.StatsServiceInterface
	overdueService services.OverdueServiceInterface
	loc            *time.Location
	logger         *zap.Logger
}

func NewStatsController(
	statsService services.StatsServiceInterface,
	overdueService services.OverdueServiceInterface,
	loc *time.Location,
	logger *zap.Logger,
) *StatsController {
	return &StatsController{statsService: statsService, overdueService: overdueService, loc: loc, logger: logger}
}

// GetStats: те же фильтры, что у списка работ, плюс compare=true.
func (c *StatsController) GetStats(ctx echo.Context) error {
	q, err := parseJobQuery(ctx, c.loc)
	if err != nil {
		return api.ErrorResponse(ctx, err, c.logger)
	}
	compare := utils.ParseBool(ctx.QueryParams(), "compare")

	stats, err := c.statsService.GetStats(ctx.Request().Context(), q, compare)
	if err != nil {
		return api.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessOne(ctx, http.StatusOK, "Успешно", stats)
}

func (c *StatsController) GetOverdue(ctx echo.Context) error {
	overdue, err := c.overdueService.ListOverdue(ctx.Request().Context())
	if err != nil {
		return api.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessOne(ctx, http.StatusOK, "Успешно", overdue)
}
