package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "optilab/pkg/errors"
	"optilab/pkg/types"
	"optilab/pkg/utils"
)

type Response[T any] struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Body    T      `json:"body,omitempty"`
}

type ListBody[T any] struct {
	List       []T             `json:"list"`
	Pagination *PaginationMeta `json:"pagination"`
}

type PaginationMeta struct {
	TotalCount uint64 `json:"total_count"`
	TotalPages int    `json:"total_pages"`
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
}

// SuccessOne - для возврата одного объекта
func SuccessOne[T any](c echo.Context, code int, message string, data T) error {
	return c.JSON(code, Response[T]{
		Status:  true,
		Message: message,
		Body:    data,
	})
}

func SuccessList[T any](c echo.Context, message string, list []T, p types.Pagination) error {
	if list == nil {
		list = make([]T, 0)
	}

	body := ListBody[T]{
		List: list,
		Pagination: &PaginationMeta{
			TotalCount: p.TotalCount,
			TotalPages: p.TotalPages,
			Page:       p.Page,
			Limit:      p.Limit,
		},
	}

	return c.JSON(http.StatusOK, Response[ListBody[T]]{
		Status:  true,
		Message: message,
		Body:    body,
	})
}

// ErrorResponse отдает ошибку клиенту. Пользователь видит только сообщение,
// внутренности пишутся в лог.
func ErrorResponse(c echo.Context, err error, logger *zap.Logger) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		msgs := make([]string, 0, len(validationErrors))
		for _, e := range validationErrors {
			msgs = append(msgs, fmt.Sprintf("Поле '%s' не прошло проверку '%s'", e.Field(), e.Tag()))
		}
		return c.JSON(http.StatusBadRequest, Response[any]{
			Status:  false,
			Message: "Ошибка валидации: " + strings.Join(msgs, "; "),
		})
	}

	httpErr := apperrors.ToHttpError(err)
	if httpErr.Code >= http.StatusInternalServerError {
		logger.Error("HTTP Error",
			zap.Int("code", httpErr.Code),
			zap.String("path", c.Path()),
			zap.String("request_id", utils.GetRequestIDFromCtx(c.Request().Context())),
			zap.Error(err),
		)
	} else {
		logger.Debug("Запрос отклонен", zap.Int("code", httpErr.Code), zap.Error(err))
	}

	return c.JSON(httpErr.Code, Response[any]{
		Status:  false,
		Message: httpErr.Message,
		Body:    httpErr.Details,
	})
}
