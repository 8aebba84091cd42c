package types

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrAmbiguousTimestamp возвращается для времени без явного смещения (например, "2025-01-10T09:00:00")
	ErrAmbiguousTimestamp = errors.New("types: timestamp has no explicit UTC offset")

	// ErrInvalidTimestamp возвращается, если строку не удалось разобрать как время
	ErrInvalidTimestamp = errors.New("types: invalid timestamp")
)

// DateLayout формат даты без времени (границы диапазонов)
const DateLayout = "2006-01-02"

// zonelessLayouts форматы, которые разбираются, но не несут информации о поясе
var zonelessLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// NormalizeUTC приводит момент времени к каноническому UTC.
// UTC возвращается как есть, любая другая локация конвертируется.
// Показания монотонных часов отбрасываются, поэтому результат пригоден как ключ map.
func NormalizeUTC(t time.Time) time.Time {
	return t.UTC()
}

// ParseInstant разбирает RFC 3339 время с явным смещением ("Z" или "±hh:mm") и возвращает его в UTC.
// Время без смещения не угадывается: возвращается ErrAmbiguousTimestamp.
func ParseInstant(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err == nil {
		return NormalizeUTC(t), nil
	}

	for _, layout := range zonelessLayouts {
		if _, zerr := time.Parse(layout, s); zerr == nil {
			return time.Time{}, fmt.Errorf("%w: %q", ErrAmbiguousTimestamp, s)
		}
	}

	return time.Time{}, fmt.Errorf("%w: %q: %v", ErrInvalidTimestamp, s, err)
}

// ParseRangeBound разбирает границу диапазона.
// Допускается полный момент времени (см. ParseInstant) или дата "YYYY-MM-DD",
// которая трактуется как полночь UTC этой даты.
func ParseRangeBound(s string) (time.Time, error) {
	if d, err := time.Parse(DateLayout, s); err == nil {
		return d.UTC(), nil
	}
	return ParseInstant(s)
}

// FormatInstant форматирует момент времени в RFC 3339 UTC
func FormatInstant(t time.Time) string {
	return NormalizeUTC(t).Format(time.RFC3339)
}
