package workflow

import "time"

// Calendar считает рабочие часы (Пн-Пт) в заданной зоне.
type Calendar struct {
	loc *time.Location
	now Clock
}

func NewCalendar(loc *time.Location, now Clock) *Calendar {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &Calendar{loc: loc, now: now}
}

func (c *Calendar) Location() *time.Location { return c.loc }

func (c *Calendar) Now() time.Time { return c.now() }

// BusinessHoursSince шагает от ts к текущему моменту по одному часу и засчитывает
// шаг, если день курсора после сдвига - будний. Неполный последний час считается целым.
// Праздники не учитываются.
func (c *Calendar) BusinessHoursSince(ts time.Time) int {
	return c.BusinessHoursBetween(ts, c.now())
}

func (c *Calendar) BusinessHoursBetween(from, to time.Time) int {
	count := 0
	for cursor := from; cursor.Before(to); {
		cursor = cursor.Add(time.Hour)
		switch cursor.In(c.loc).Weekday() {
		case time.Saturday, time.Sunday:
		default:
			count++
		}
	}
	return count
}
