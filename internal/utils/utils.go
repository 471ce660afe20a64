package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/MonsieurPatate/daily-tender-bot/internal/apperrors"
)

var TimeRegex = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)

// Форматы дат, которые принимает /skip
var dateLayouts = []string{"02.01.2006", "02-01-2006", "02/01/2006", "2006-01-02", "02012006", "20060102"}

// DateOf — календарная дата по UTC (полночь).
func DateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SameDate сравнивает только календарные даты по UTC.
func SameDate(a, b time.Time) bool {
	return DateOf(a).Equal(DateOf(b))
}

// BeforeDate — дата a строго раньше даты b.
func BeforeDate(a, b time.Time) bool {
	return DateOf(a).Before(DateOf(b))
}

// ParseClock разбирает "ЧЧ:ММ" (24 часа, UTC).
func ParseClock(s string) (hours, minutes int, err error) {
	match := TimeRegex.FindStringSubmatch(s)
	if match == nil {
		return 0, 0, apperrors.ErrInvalidTime.WithDetail("ожидается ЧЧ:ММ, получено %q", s)
	}
	hours, _ = strconv.Atoi(match[1])
	minutes, _ = strconv.Atoi(match[2])
	if hours > 23 || minutes > 59 {
		return 0, 0, apperrors.ErrInvalidTime.WithDetail("вне диапазона: %q", s)
	}
	return hours, minutes, nil
}

// DailyTimeUTC — сегодняшняя дата по UTC с заданным временем.
// Время должно быть позже now, иначе голосование закрылось бы сразу.
func DailyTimeUTC(now time.Time, hours, minutes int) (time.Time, error) {
	now = now.UTC()
	daily := time.Date(now.Year(), now.Month(), now.Day(), hours, minutes, 0, 0, time.UTC)
	if daily.Before(now) {
		return time.Time{}, apperrors.ErrInvalidTime.WithDetail(
			"время дейли должно быть позже текущего: %s UTC, сейчас %s UTC",
			daily.Format("15:04"), now.Format("15:04"))
	}
	return daily, nil
}

// ParseDate пробует все поддерживаемые форматы даты.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, apperrors.ErrInvalidDate.WithDetail("%q, пример: %s", s, "31.12.2024")
}

// FormatDate — дата в виде ДД.ММ.ГГГГ
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%02d.%02d.%d", t.Day(), t.Month(), t.Year())
}
