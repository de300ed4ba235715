// Package telemetry обеспечивает наблюдаемость CLI.
//
// Включает:
//   - logging.go — structured logging через slog (в stderr, stdout остаётся для данных)
//   - metrics.go — Prometheus метрики запросов к API и состояний сущностей
//   - server.go  — HTTP-сервер /metrics для команды watch
package telemetry
