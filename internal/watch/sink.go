package watch

import (
	"context"
	"log/slog"

	"github.com/do-nan-fer/Garden-CLI/internal/domain"
	"github.com/do-nan-fer/Garden-CLI/internal/telemetry"
)

// Sink получает наблюдённые изменения состояния.
type Sink interface {
	Record(ctx context.Context, change domain.StatusChange) error
}

// SinkFunc адаптирует функцию к интерфейсу Sink.
type SinkFunc func(ctx context.Context, change domain.StatusChange) error

// Record вызывает f.
func (f SinkFunc) Record(ctx context.Context, change domain.StatusChange) error {
	return f(ctx, change)
}

// LogSink пишет изменения в лог.
type LogSink struct {
	Logger *slog.Logger
}

// Record реализует Sink.
func (s LogSink) Record(_ context.Context, c domain.StatusChange) error {
	telemetry.WithEntity(s.Logger, string(c.Entity), c.EntityID).Info("status changed",
		"name", c.Name,
		"from", c.From,
		"to", c.To,
		"event_id", c.ID,
	)
	return nil
}

// MetricsSink считает изменения в Prometheus.
type MetricsSink struct {
	Metrics *telemetry.Metrics
}

// Record реализует Sink.
func (s MetricsSink) Record(_ context.Context, c domain.StatusChange) error {
	s.Metrics.RecordChange(string(c.Entity), c.To)
	return nil
}
