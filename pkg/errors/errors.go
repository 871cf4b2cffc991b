package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

var (
	// Таксономия ядра
	ErrNotFound         = fmt.Errorf("запись не найдена")
	ErrForbidden        = fmt.Errorf("доступ запрещён")
	ErrConflict         = fmt.Errorf("конфликт данных")
	ErrInvalidInput     = fmt.Errorf("некорректные входные данные")
	ErrStoreUnavailable = fmt.Errorf("хранилище недоступно")

	// JWT и токены
	ErrInvalidSigningMethod = fmt.Errorf("неверный метод подписи токена")
	ErrInvalidToken         = fmt.Errorf("недопустимый токен")
	ErrTokenExpired         = fmt.Errorf("срок действия токена истёк")

	// Авторизация
	ErrEmptyAuthHeader   = fmt.Errorf("заголовок авторизации отсутствует")
	ErrInvalidAuthHeader = fmt.Errorf("неверный формат заголовка авторизации")
	ErrUnauthorized      = fmt.Errorf("неавторизован")

	// Контекст
	ErrActorNotFoundInContext = fmt.Errorf("актор не найден в контексте запроса")
)

// InvalidInputError несет текст для пользователя и сопоставляется с ErrInvalidInput.
type InvalidInputError struct {
	Message string
}

func (e *InvalidInputError) Error() string { return e.Message }

func (e *InvalidInputError) Unwrap() error { return ErrInvalidInput }

func NewInvalidInputError(format string, args ...interface{}) error {
	return &InvalidInputError{Message: fmt.Sprintf(format, args...)}
}

// HttpError - ошибка, готовая к отдаче клиенту.
type HttpError struct {
	Code    int
	Message string
	Err     error
	Details interface{}
	Context map[string]interface{}
}

func (e *HttpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *HttpError) Unwrap() error { return e.Err }

func NewHttpError(code int, message string, err error, details interface{}) *HttpError {
	return &HttpError{Code: code, Message: message, Err: err, Details: details}
}

// ToHttpError переводит ошибку сервиса в HTTP-код по таксономии.
func ToHttpError(err error) *HttpError {
	var httpErr *HttpError
	if stderrors.As(err, &httpErr) {
		return httpErr
	}

	var invalid *InvalidInputError
	switch {
	case stderrors.As(err, &invalid):
		return NewHttpError(http.StatusBadRequest, invalid.Message, err, nil)
	case stderrors.Is(err, ErrInvalidInput):
		return NewHttpError(http.StatusBadRequest, ErrInvalidInput.Error(), err, nil)
	case stderrors.Is(err, ErrNotFound):
		return NewHttpError(http.StatusNotFound, ErrNotFound.Error(), err, nil)
	case stderrors.Is(err, ErrForbidden):
		return NewHttpError(http.StatusForbidden, ErrForbidden.Error(), err, nil)
	case stderrors.Is(err, ErrConflict):
		return NewHttpError(http.StatusConflict, ErrConflict.Error(), err, nil)
	case stderrors.Is(err, ErrStoreUnavailable):
		return NewHttpError(http.StatusServiceUnavailable, ErrStoreUnavailable.Error(), err, nil)
	case stderrors.Is(err, ErrEmptyAuthHeader), stderrors.Is(err, ErrInvalidAuthHeader),
		stderrors.Is(err, ErrInvalidToken), stderrors.Is(err, ErrTokenExpired),
		stderrors.Is(err, ErrInvalidSigningMethod), stderrors.Is(err, ErrUnauthorized),
		stderrors.Is(err, ErrActorNotFoundInContext):
		return NewHttpError(http.StatusUnauthorized, ErrUnauthorized.Error(), err, nil)
	}
	return NewHttpError(http.StatusInternalServerError, "Внутренняя ошибка сервера", err, nil)
}
