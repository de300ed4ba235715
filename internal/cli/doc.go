// Package cli реализует инструмент командной строки garden.
//
// # Обзор
//
// CLI — клиент garden backend'а. Работает через HTTP и управляет
// plants, packages, workers и actions. Команды watch, events и history
// дополнительно используют RabbitMQ и PostgreSQL, если они настроены.
//
// # Ключевые компоненты
//
// ## Client
//
// HTTP-клиент для garden API. Инкапсулирует запросы, разбор ответов
// и ошибок backend'а ({"detail": ...} или {"error": {...}}).
// Каждый запрос получает X-Request-ID и span OpenTelemetry.
//
//	client := cli.NewClient("http://localhost:8500")
//	plants, err := client.ListPlants(ctx)
//
// ## Output
//
// Форматирование вывода. Поддерживает три режима:
//   - table — выровненные таблицы с ANSI-цветом (по умолчанию)
//   - json
//   - yaml
//
// Данные выводятся в stdout, сообщения (Success/Error) и вопросы — в stderr.
// Это позволяет использовать pipe: garden plant list -o json | jq .
//
// ## Commands
//
// Cobra-команды организованы по ресурсам:
//   - plant: list, show, data, create, edit, delete
//   - package: list, show, create, edit, delete
//   - worker: list, show, create, edit, delete, start, stop, pick add/remove
//   - action: list, show, create, edit, delete, run
//   - watch, events, history, config, version
//
// Каждая группа создаётся через фабричную функцию (NewPlantCmd и т.д.),
// принимающую clientFn и outputFn — замыкания для ленивого создания
// Client и Output после парсинга PersistentFlags.
package cli
