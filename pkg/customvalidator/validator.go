// Файл: pkg/customvalidator/validator.go

package customvalidator

import (
	"reflect"

	"github.com/aarondl/null/v8"
	"github.com/go-playground/validator/v10"

	"optilab/pkg/constants"
)

// CustomValidator - обертка для использования в Echo
type CustomValidator struct {
	validator *validator.Validate
}

// Validate реализует интерфейс echo.Validator
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// New создает и настраивает валидатор. Ошибка регистрации правил - повод не стартовать.
func New() *CustomValidator {
	v := validator.New()
	registerNullTypes(v)
	if err := RegisterCustomValidations(v); err != nil {
		panic("ошибка регистрации валидаторов: " + err.Error())
	}
	return &CustomValidator{validator: v}
}

// RegisterCustomValidations "собирает" все наши кастомные правила валидации
// и регистрирует их в переданном экземпляре валидатора.
func RegisterCustomValidations(v *validator.Validate) error {
	rules := map[string]validator.Func{
		"job_status":       enumRule(func(s string) bool { return constants.JobStatus(s).Valid() }),
		"job_priority":     enumRule(func(s string) bool { return constants.Priority(s).Valid() }),
		"job_type":         enumRule(func(s string) bool { return constants.JobType(s).Valid() }),
		"spare_status":     enumRule(func(s string) bool { return constants.SparePartStatus(s).Valid() }),
		"spare_priority":   enumRule(func(s string) bool { return constants.SparePartPriority(s).Valid() }),
		"spare_order_type": enumRule(func(s string) bool { return constants.SparePartOrderType(s).Valid() }),
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

// enumRule - пустое значение пропускается, обязательность задает required.
func enumRule(valid func(string) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		field := fl.Field()
		if field.Kind() == reflect.Ptr {
			if field.IsNil() {
				return true
			}
			field = field.Elem()
		}
		if field.Kind() != reflect.String {
			return false
		}
		s := field.String()
		return s == "" || valid(s)
	}
}

// registerNullTypes учит валидатор "смотреть внутрь" null.String.
func registerNullTypes(v *validator.Validate) {
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if val, ok := field.Interface().(null.String); ok && val.Valid {
			return val.String
		}
		return nil
	}, null.String{})
}
