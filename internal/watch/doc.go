// Package watch периодически опрашивает backend и отслеживает смену
// состояний plants и workers.
//
// # Цикл
//
// Watcher.Run выполняет Tick сразу, затем по расписанию (cron-выражение
// или дескриптор вида "@every 10s"). Каждый Tick:
//
//  1. Загружает выбранные сущности из Source
//  2. Сравнивает состояния с предыдущим опросом
//  3. Передаёт каждое изменение всем Sink по очереди
//  4. Вызывает OnSnapshot (например, для перерисовки таблицы)
//
// Первое наблюдение сущности не считается изменением. Ошибка одного
// опроса или одного Sink не останавливает цикл.
//
// # Sinks
//
//   - LogSink — запись в slog
//   - MetricsSink — счётчик garden_status_changes_total
//   - mq.Publisher — событие в RabbitMQ (через SinkFunc)
//   - repo.StatusChangeRepo — история в PostgreSQL (через SinkFunc)
package watch
