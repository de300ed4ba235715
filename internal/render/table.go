package render

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Style — именованный стиль ячейки.
type Style string

// Поддерживаемые стили.
const (
	StyleNone    Style = ""
	StyleBold    Style = "bold"
	StyleDim     Style = "dim"
	StyleRed     Style = "red"
	StyleGreen   Style = "green"
	StyleYellow  Style = "yellow"
	StyleMagenta Style = "magenta"
	StyleCyan    Style = "cyan"
)

const ansiReset = "\033[0m"

var ansiCodes = map[Style]string{
	StyleBold:    "\033[1m",
	StyleDim:     "\033[2m",
	StyleRed:     "\033[31m",
	StyleGreen:   "\033[32m",
	StyleYellow:  "\033[33m",
	StyleMagenta: "\033[35m",
	StyleCyan:    "\033[36m",
}

// Cell — ячейка таблицы. Ширина считается только по Text.
type Cell struct {
	Text  string
	Style Style
}

// Row — строка таблицы.
type Row []Cell

// Text создаёт ячейку без стиля.
func Text(s string) Cell {
	return Cell{Text: s}
}

// Styled создаёт ячейку со стилем.
func Styled(s string, style Style) Cell {
	return Cell{Text: s, Style: style}
}

// CellOf приводит произвольное значение к ячейке.
func CellOf(v any) Cell {
	switch c := v.(type) {
	case Cell:
		return c
	case string:
		return Cell{Text: c}
	case nil:
		return Cell{Text: "-"}
	case fmt.Stringer:
		return Cell{Text: c.String()}
	default:
		return Cell{Text: fmt.Sprint(c)}
	}
}

// NewRow собирает строку из значений разных типов.
func NewRow(values ...any) Row {
	row := make(Row, len(values))
	for i, v := range values {
		row[i] = CellOf(v)
	}
	return row
}

// Width возвращает видимую ширину ячейки.
func (c Cell) Width() int {
	return utf8.RuneCountInString(c.Text)
}

// Render возвращает текст ячейки, обёрнутый в ANSI-код стиля, если color=true.
func (c Cell) Render(color bool) string {
	code, ok := ansiCodes[c.Style]
	if !color || !ok {
		return c.Text
	}
	return code + c.Text + ansiReset
}

type tableOptions struct {
	color   bool
	padding int
}

// Option настраивает Table.
type Option func(*tableOptions)

// WithColor включает или выключает стили ячеек.
func WithColor(enabled bool) Option {
	return func(o *tableOptions) {
		o.color = enabled
	}
}

// WithPadding задаёт число пробелов между колонками (не меньше 2).
func WithPadding(n int) Option {
	return func(o *tableOptions) {
		o.padding = max(n, 2)
	}
}

// Table строит текстовую таблицу в стиле "plain": строка заголовков,
// затем по строке на запись. Колонки выровнены по левому краю и дополнены
// до самой широкой ячейки колонки; последняя колонка не дополняется.
//
// Если число ячеек в строке отличается от числа заголовков,
// возвращается *ShapeMismatchError и пустой результат.
func Table(headers []string, rows []Row, opts ...Option) (string, error) {
	o := tableOptions{color: true, padding: 2}
	for _, opt := range opts {
		opt(&o)
	}

	for i, row := range rows {
		if len(row) != len(headers) {
			return "", &ShapeMismatchError{Row: i, Want: len(headers), Got: len(row)}
		}
	}
	if len(headers) == 0 {
		return "", nil
	}

	head := make(Row, len(headers))
	widths := make([]int, len(headers))
	for i, h := range headers {
		head[i] = Text(h)
		widths[i] = head[i].Width()
	}
	for _, row := range rows {
		for i, c := range row {
			widths[i] = max(widths[i], c.Width())
		}
	}

	var b strings.Builder
	writeRow(&b, head, widths, o)
	for _, row := range rows {
		writeRow(&b, row, widths, o)
	}
	return b.String(), nil
}

func writeRow(b *strings.Builder, row Row, widths []int, o tableOptions) {
	last := len(row) - 1
	for i, c := range row {
		b.WriteString(c.Render(o.color))
		if i == last {
			break
		}
		b.WriteString(strings.Repeat(" ", widths[i]-c.Width()+o.padding))
	}
	b.WriteByte('\n')
}

// Fields строит таблицу KEY/VALUE из плоских полей.
func Fields(fields []FlatField, opts ...Option) (string, error) {
	rows := make([]Row, len(fields))
	for i, f := range fields {
		rows[i] = Row{Text(f.Key), Text(f.Text())}
	}
	return Table([]string{"KEY", "VALUE"}, rows, opts...)
}
