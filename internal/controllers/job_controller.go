package controllers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"optilab/internal/dto"
	"optilab/internal/services"
	"optilab/pkg/api"
	"optilab/pkg/constants"
	apperrors "optilab/pkg/errors"
)

type JobController struct {
	jobService services.JobServiceInterface
	loc        *time.Location
	logger     *zap.Logger
}

func NewJobController(jobService services.JobServiceInterface, loc *time.Location, logger *zap.Logger) *JobController {
	return &JobController{jobService: jobService, loc: loc, logger: logger}
}

func (c *JobController) GetJobs(ctx echo.Context) error {
	q, err := parseJobQuery(ctx, c.loc)
	if err != nil {
		return api.ErrorResponse(ctx, err, c.logger)
	}

	jobs, page, err := c.jobService.ListJobs(ctx.Request().Context(), q)
	if err != nil {
		return api.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessList(ctx, "Успешно", jobs, page)
}

func (c *JobController) FindJob(ctx echo.Context) error {
	job, err := c.jobService.GetJob(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return api.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessOne(ctx, http.StatusOK, "Успешно", job)
}

func (c *JobController) CreateJob(ctx echo.Context) error {
	var req dto.CreateJobDTO
	if err := ctx.Bind(&req); err != nil {
		return api.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверное тело запроса", err, nil), c.logger)
	}
	if err := ctx.Validate(&req); err != nil {
		return api.ErrorResponse(ctx, err, c.logger)
	}

	job, err := c.jobService.CreateJob(ctx.Request().Context(), req.ToInput())
	if err != nil {
		return api.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessOne(ctx, http.StatusCreated, "Работа создана", job)
}

func (c *JobController) UpdateJob(ctx echo.Context) error {
	var req dto.UpdateJobDTO
	if err := ctx.Bind(&req); err != nil {
		return api.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверное тело запроса", err, nil), c.logger)
	}
	if err := ctx.Validate(&req); err != nil {
		return api.ErrorResponse(ctx, err, c.logger)
	}

	job, err := c.jobService.UpdateJob(ctx.Request().Context(), ctx.Param("id"), req.ToChange())
	if err != nil {
		return api.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessOne(ctx, http.StatusOK, "Работа обновлена", job)
}

func (c *JobController) BulkStatus(ctx echo.Context) error {
	var req dto.BulkStatusDTO
	if err := ctx.Bind(&req); err != nil {
		return api.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверное тело запроса", err, nil), c.logger)
	}
	if err := ctx.Validate(&req); err != nil {
		return api.ErrorResponse(ctx, err, c.logger)
	}

	updated, err := c.jobService.BulkTransition(ctx.Request().Context(), req.IDs, constants.JobStatus(req.Status))
	if err != nil {
		return api.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessOne(ctx, http.StatusOK, "Статусы обновлены", dto.BulkStatusResultDTO{Requested: len(req.IDs), Updated: updated})
}

func (c *JobController) DeleteJob(ctx echo.Context) error {
	if err := c.jobService.DeleteJob(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return api.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessOne[any](ctx, http.StatusOK, "Работа удалена", nil)
}

func (c *JobController) GetJobHistory(ctx echo.Context) error {
	history, err := c.jobService.GetHistory(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return api.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessOne(ctx, http.StatusOK, "Успешно", history)
}
