package utils

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// FormatHoursToHumanReadable преобразует часы (дробное число) в строку вида "1д 2ч 3м".
func FormatHoursToHumanReadable(hours float64) string {
	if hours <= 0 {
		return "0м"
	}
	totalMinutes := uint64(math.Round(hours * 60))

	days := totalMinutes / (24 * 60)
	totalMinutes %= 24 * 60
	h := totalMinutes / 60
	m := totalMinutes % 60

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dд", days))
	}
	if h > 0 {
		parts = append(parts, fmt.Sprintf("%dч", h))
	}
	if m > 0 || len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%dм", m))
	}
	return strings.Join(parts, " ")
}

// EndOfDay - последняя миллисекунда календарного дня t в его зоне.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location()).AddDate(0, 0, 1).Add(-time.Millisecond)
}

// StartOfDay - полночь календарного дня t в его зоне.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
