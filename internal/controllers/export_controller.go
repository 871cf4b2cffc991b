package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"optilab/internal/entities"
	"optilab/internal/services"
	"optilab/pkg/api"
)

type ExportController struct {
	jobService services.JobServiceInterface
	loc        *time.Location
	logger     *zap.Logger
}

func NewExportController(jobService services.JobServiceInterface, loc *time.Location, logger *zap.Logger) *ExportController {
	return &ExportController{jobService: jobService, loc: loc, logger: logger}
}

var jobExportHeaders = []string{
	"№", "ID работы", "Филиал", "Описание", "Тип", "Статус", "Приоритет", "Комментарий к приоритету",
	"Создана", "Обновлена",
}

func (c *ExportController) jobRow(n int, job entities.Job) []interface{} {
	const layout = "02.01.2006 15:04"
	return []interface{}{
		n, job.ID, job.BranchName, job.Description, string(job.JobType), string(job.Status),
		string(job.Priority), job.PriorityMessage.String,
		job.CreatedAt.In(c.loc).Format(layout), job.UpdatedAt.In(c.loc).Format(layout),
	}
}

// ExportJobs выгружает в xlsx весь отфильтрованный список без пагинации.
func (c *ExportController) ExportJobs(ctx echo.Context) error {
	q, err := parseJobQuery(ctx, c.loc)
	if err != nil {
		return api.ErrorResponse(ctx, err, c.logger)
	}
	q.DisablePagination = true

	jobs, _, err := c.jobService.ListJobs(ctx.Request().Context(), q)
	if err != nil {
		return api.ErrorResponse(ctx, err, c.logger)
	}

	f, err := c.buildJobsWorkbook(jobs)
	if err != nil {
		return api.ErrorResponse(ctx, err, c.logger)
	}
	defer f.Close()

	c.logger.Debug("Экспорт работ", zap.Int("rows", len(jobs)))
	fileName := fmt.Sprintf("jobs_%s.xlsx", time.Now().In(c.loc).Format("2006-01-02"))
	ctx.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename="+fileName)
	ctx.Response().WriteHeader(http.StatusOK)
	return f.Write(ctx.Response().Writer)
}

func (c *ExportController) buildJobsWorkbook(jobs []entities.Job) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := "Работы"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(sheet, "A1", &jobExportHeaders); err != nil {
		return nil, err
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheet, "A1", "J1", style); err != nil {
		return nil, err
	}

	for i, job := range jobs {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := c.jobRow(i+1, job)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
	}
	for _, w := range []struct {
		from, to string
		width    float64
	}{{"B", "C", 18}, {"D", "D", 45}, {"E", "H", 20}, {"I", "J", 18}} {
		if err := f.SetColWidth(sheet, w.from, w.to, w.width); err != nil {
			return nil, err
		}
	}
	return f, nil
}
