package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/do-nan-fer/Garden-CLI/internal/config"
	"github.com/do-nan-fer/Garden-CLI/internal/render"
)

// ErrInvalidOutput — неизвестный формат вывода.
var ErrInvalidOutput = errors.New("invalid output format")

// Output управляет форматированием вывода CLI.
type Output struct {
	mode  string
	color bool
	w     io.Writer // stdout для данных
	errW  io.Writer // stderr для сообщений
}

// NewOutputTo создаёт Output с явными writer'ами.
func NewOutputTo(w, errW io.Writer, mode string, color bool) (*Output, error) {
	switch mode {
	case "":
		mode = config.OutputTable
	case config.OutputTable, config.OutputJSON, config.OutputYAML:
	default:
		return nil, fmt.Errorf("%w: %q (want %s, %s or %s)", ErrInvalidOutput, mode,
			config.OutputTable, config.OutputJSON, config.OutputYAML)
	}

	return &Output{
		mode:  mode,
		color: color,
		w:     w,
		errW:  errW,
	}, nil
}

// ResolveColor решает, раскрашивать ли вывод в w.
// colorMode: auto (цвет только на терминале), always, never.
func ResolveColor(colorMode string, w io.Writer) bool {
	switch colorMode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}

	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// IsTable сообщает, выводятся ли данные таблицей.
func (o *Output) IsTable() bool {
	return o.mode == config.OutputTable
}

// Print выводит данные: таблицу, JSON или YAML в зависимости от режима.
func (o *Output) Print(headers []string, rows []render.Row, data any) error {
	switch o.mode {
	case config.OutputJSON:
		return o.JSON(data)
	case config.OutputYAML:
		return o.YAML(data)
	default:
		return o.Table(headers, rows)
	}
}

// PrintRecord выводит вложенный ответ: плоской таблицей KEY/VALUE
// или исходной структурой в JSON/YAML.
func (o *Output) PrintRecord(rec render.Record) error {
	switch o.mode {
	case config.OutputJSON:
		return o.JSON(rec)
	case config.OutputYAML:
		return o.YAML(recordNode(rec))
	}

	s, err := render.Fields(render.Flatten(rec), render.WithColor(o.color))
	if err != nil {
		return err
	}
	_, err = io.WriteString(o.w, s)
	return err
}

// Table выводит данные в виде выровненной таблицы.
func (o *Output) Table(headers []string, rows []render.Row) error {
	s, err := render.Table(headers, rows, render.WithColor(o.color))
	if err != nil {
		return err
	}
	_, err = io.WriteString(o.w, s)
	return err
}

// JSON выводит данные в формате JSON с отступами.
func (o *Output) JSON(v any) error {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// YAML выводит данные в формате YAML.
func (o *Output) YAML(v any) error {
	enc := yaml.NewEncoder(o.w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// Section выводит заголовок блока (только для таблиц).
func (o *Output) Section(title string) {
	if !o.IsTable() {
		return
	}
	fmt.Fprintln(o.w)
	if o.color {
		fmt.Fprintln(o.w, render.Styled(title, render.StyleBold).Render(true))
		return
	}
	fmt.Fprintln(o.w, title)
}

// Clear очищает экран терминала. Без цвета (pipe, файл) ничего не делает.
func (o *Output) Clear() {
	if o.color {
		fmt.Fprint(o.w, "\033[H\033[2J")
	}
}

// Println выводит строку данных в stdout.
func (o *Output) Println(s string) {
	fmt.Fprintln(o.w, s)
}

// Success выводит сообщение об успехе в stderr.
func (o *Output) Success(msg string) {
	fmt.Fprintln(o.errW, msg)
}

// recordNode строит yaml.Node с сохранением порядка полей Record.
func recordNode(rec render.Record) *yaml.Node {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, f := range rec {
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.Key}
		node.Content = append(node.Content, key, valueNode(f.Value))
	}
	return node
}

func valueNode(v render.Value) *yaml.Node {
	switch v.Kind {
	case render.KindRecord:
		return recordNode(v.Record)
	case render.KindList:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range v.List {
			node.Content = append(node.Content, valueNode(item))
		}
		return node
	}

	switch s := v.Scalar.(type) {
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	case string:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
	case bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: v.String()}
	case json.Number:
		tag := "!!int"
		if _, err := s.Int64(); err != nil {
			tag = "!!float"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: s.String()}
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Value: v.String()}
	}
}
