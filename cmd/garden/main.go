// Garden CLI — инструмент командной строки для управления plants,
// packages, workers и actions через HTTP API.
//
// Использование:
//
//	garden [--api-url URL] [-o table|json|yaml] <command> <subcommand> [flags]
//
// Команды:
//
//	plant     Управление plants (list-plants — синоним plant list)
//	package   Управление packages
//	worker    Управление workers и их picks
//	action    Управление и запуск actions
//	watch     Отслеживание смен состояний
//	events    Чтение событий смены состояний из RabbitMQ
//	history   История смен состояний из PostgreSQL
//	config    Файл конфигурации
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/do-nan-fer/Garden-CLI/internal/cli"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := cli.Execute(ctx, cli.NewRootCmd(version))
	cancel()
	os.Exit(code)
}
