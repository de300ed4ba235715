// Package mq публикует и читает события смены состояний через RabbitMQ.
//
// Структура:
//   - connection.go — соединение с reconnect; топология объявляется при каждом подключении
//   - topology.go   — exchange garden.events и durable-очередь истории
//   - publisher.go  — публикация status.changed (watch)
//   - consumer.go   — подписка на события (events)
//
// Routing key события — "<entity>.status", например "plant.status".
// Подписка на все сущности — "*.status".
package mq
