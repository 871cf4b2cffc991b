package controllers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"optilab/internal/dto"
	"optilab/internal/services"
	"optilab/pkg/api"
	apperrors "optilab/pkg/errors"
)

type SparePartController struct {
	sparePartService services.SparePartServiceInterface
	loc              *time.Location
	logger           *zap.Logger
}

func NewSparePartController(sparePartService services.SparePartServiceInterface, loc *time.Location, logger *zap.Logger) *SparePartController {
	return &SparePartController{sparePartService: sparePartService, loc: loc, logger: logger}
}

func (c *SparePartController) GetSpareParts(ctx echo.Context) error {
	q, err := parseSparePartQuery(ctx, c.loc)
	if err != nil {
		return api.ErrorResponse(ctx, err, c.logger)
	}
	orders, page, err := c.sparePartService.ListSpareParts(ctx.Request().Context(), q)
	if err != nil {
		return api.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessList(ctx, "Успешно", orders, page)
}

func (c *SparePartController) FindSparePart(ctx echo.Context) error {
	order, err := c.sparePartService.GetSparePart(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return api.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessOne(ctx, http.StatusOK, "Успешно", order)
}

func (c *SparePartController) CreateSparePart(ctx echo.Context) error {
	var req dto.CreateSparePartDTO
	if err := ctx.Bind(&req); err != nil {
		return api.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверное тело запроса", err, nil), c.logger)
	}
	if err := ctx.Validate(&req); err != nil {
		return api.ErrorResponse(ctx, err, c.logger)
	}

	order, err := c.sparePartService.CreateSparePart(ctx.Request().Context(), req.ToInput())
	if err != nil {
		return api.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessOne(ctx, http.StatusCreated, "Заказ создан", order)
}

func (c *SparePartController) UpdateSparePart(ctx echo.Context) error {
	var req dto.UpdateSparePartDTO
	if err := ctx.Bind(&req); err != nil {
		return api.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверное тело запроса", err, nil), c.logger)
	}
	if err := ctx.Validate(&req); err != nil {
		return api.ErrorResponse(ctx, err, c.logger)
	}

	order, err := c.sparePartService.UpdateSparePart(ctx.Request().Context(), ctx.Param("id"), req.ToChange())
	if err != nil {
		return api.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessOne(ctx, http.StatusOK, "Заказ обновлен", order)
}

func (c *SparePartController) DeleteSparePart(ctx echo.Context) error {
	if err := c.sparePartService.DeleteSparePart(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return api.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessOne[any](ctx, http.StatusOK, "Заказ удален", nil)
}
