package watch

import (
	"fmt"

	"github.com/robfig/cron/v3"
)

// DefaultSchedule — расписание опроса по умолчанию.
const DefaultSchedule = "@every 10s"

// scheduleParser — стандартные 5 полей плюс дескрипторы (@every, @hourly, ...).
var scheduleParser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// ParseSchedule разбирает расписание опроса.
func ParseSchedule(expr string) (cron.Schedule, error) {
	if expr == "" {
		expr = DefaultSchedule
	}
	schedule, err := scheduleParser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", expr, err)
	}
	return schedule, nil
}
