// Package render содержит ядро отображения ответов backend'а.
//
// Включает:
//   - record.go  — Record: вложенный документ с сохранением порядка полей
//   - flatten.go — разворачивание Record в плоский список dotted-ключей
//   - since.go   — относительное время ("12 M", "3 D") для колонки SINCE
//   - table.go   — выравненная текстовая таблица с цветом по ячейкам
//
// Все функции пакета чистые: не выполняют I/O и не хранят состояние.
package render
