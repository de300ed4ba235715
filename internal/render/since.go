package render

import (
	"fmt"
	"strings"
	"time"
)

// timestampLayouts — форматы timestamp'ов backend'а.
// Naive ISO без зоны считается UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

// ParseTimestamp разбирает ISO-8601 timestamp и приводит его к UTC.
func ParseTimestamp(ts string) (time.Time, error) {
	ts = strings.TrimSpace(ts)
	if ts == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrInvalidTimestamp)
	}

	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, ts, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, ts)
}

// Since возвращает возраст timestamp'а относительно now: "59 S", "1 M", "23 H", "1 D".
func Since(ts string, now time.Time) (string, error) {
	t, err := ParseTimestamp(ts)
	if err != nil {
		return "", err
	}
	return FormatElapsed(now.UTC().Sub(t)), nil
}

// FormatElapsed форматирует длительность в целых секундах с округлением вниз.
// Для отрицательных длительностей результат не определён.
func FormatElapsed(d time.Duration) string {
	secs := int64(d / time.Second)

	switch {
	case secs < 60:
		return fmt.Sprintf("%d S", secs)
	case secs < 3600:
		return fmt.Sprintf("%d M", secs/60)
	case secs < 86400:
		return fmt.Sprintf("%d H", secs/3600)
	default:
		return fmt.Sprintf("%d D", secs/86400)
	}
}
