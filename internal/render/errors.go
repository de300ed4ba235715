package render

import (
	"errors"
	"fmt"
)

// Ошибки рендеринга.
var (
	// ErrShapeMismatch — число колонок строки не совпадает с заголовком.
	ErrShapeMismatch = errors.New("row/header column count mismatch")

	// ErrInvalidTimestamp — timestamp отсутствует или не разбирается.
	ErrInvalidTimestamp = errors.New("invalid timestamp")

	// ErrUnexpectedShape — на месте объекта оказалось что-то другое.
	ErrUnexpectedShape = errors.New("unexpected document shape")
)

// ShapeMismatchError — ошибка формы таблицы с номером строки.
type ShapeMismatchError struct {
	Row  int // индекс строки (0 — первая строка данных)
	Want int // число заголовков
	Got  int // число ячеек в строке
}

// Error реализует интерфейс error.
func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("row %d: expected %d columns, got %d", e.Row, e.Want, e.Got)
}

// Unwrap возвращает ErrShapeMismatch.
func (e *ShapeMismatchError) Unwrap() error {
	return ErrShapeMismatch
}
