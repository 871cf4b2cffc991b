package utils

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	apperrors "optilab/pkg/errors"
)

const DateLayout = "2006-01-02"

// ParseList читает значения вида ?status=A,B и ?status[]=A&status[]=B.
func ParseList(values url.Values, name string) []string {
	var raw []string
	if arr, ok := values[name+"[]"]; ok {
		raw = arr
	} else if s := values.Get(name); s != "" {
		raw = strings.Split(s, ",")
	}

	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// ParsePage возвращает page и limit; пустые и нечисловые значения дают 0.
func ParsePage(values url.Values) (page int, limit int) {
	if p, err := strconv.Atoi(values.Get("page")); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(values.Get("limit")); err == nil && l > 0 {
		limit = l
	}
	return page, limit
}

// ParseDate разбирает дату YYYY-MM-DD в указанной зоне.
func ParseDate(values url.Values, name string, loc *time.Location) (*time.Time, error) {
	s := values.Get(name)
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return nil, apperrors.NewInvalidInputError("Неверный формат даты '%s': ожидается YYYY-MM-DD", name)
	}
	return &t, nil
}

func ParseBool(values url.Values, name string) bool {
	b, _ := strconv.ParseBool(values.Get(name))
	return b
}
