package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// Kind — тег значения в Record.
type Kind int

const (
	// KindScalar — string, number, bool или null.
	KindScalar Kind = iota

	// KindRecord — вложенный объект.
	KindRecord

	// KindList — упорядоченный список значений.
	KindList
)

// Value — значение поля Record: tagged union {Scalar, Record, List}.
//
// Scalar хранит string, json.Number, bool или nil.
type Value struct {
	Kind   Kind
	Scalar any
	Record Record
	List   []Value
}

// Field — пара ключ/значение в Record.
type Field struct {
	Key   string
	Value Value
}

// Record — JSON-объект с сохранённым порядком полей документа.
type Record []Field

// ScalarValue создаёт скалярное значение.
func ScalarValue(v any) Value {
	return Value{Kind: KindScalar, Scalar: v}
}

// RecordValue создаёт вложенный объект.
func RecordValue(fields ...Field) Value {
	return Value{Kind: KindRecord, Record: Record(fields)}
}

// ListValue создаёт список.
func ListValue(items ...Value) Value {
	return Value{Kind: KindList, List: items}
}

// F — сокращение для Field{Key: key, Value: v}.
func F(key string, v Value) Field {
	return Field{Key: key, Value: v}
}

// Get возвращает значение поля по ключу верхнего уровня.
func (r Record) Get(key string) (Value, bool) {
	for _, f := range r {
		if f.Key == key {
			return f.Value, true
		}
	}
	return Value{}, false
}

// set заменяет значение существующего ключа на месте или добавляет поле в конец.
// Повторный ключ в JSON: побеждает последнее значение, позиция — первая.
func (r Record) set(key string, v Value) Record {
	for i := range r {
		if r[i].Key == key {
			r[i].Value = v
			return r
		}
	}
	return append(r, Field{Key: key, Value: v})
}

// String возвращает текстовое представление значения для таблиц.
func (v Value) String() string {
	switch v.Kind {
	case KindScalar:
		switch s := v.Scalar.(type) {
		case nil:
			return "null"
		case string:
			return s
		case json.Number:
			return s.String()
		case bool:
			return strconv.FormatBool(s)
		default:
			return fmt.Sprint(s)
		}
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("<%v>", err)
		}
		return string(data)
	}
}

// MarshalJSON реализует json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindRecord:
		return v.Record.MarshalJSON()
	case KindList:
		items := v.List
		if items == nil {
			items = []Value{}
		}
		return json.Marshal(items)
	default:
		return json.Marshal(v.Scalar)
	}
}

// MarshalJSON сериализует Record, сохраняя порядок полей.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := f.Value.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// DecodeRecord разбирает JSON-объект в Record с сохранением порядка полей.
//
// Пустое тело даёт пустой Record. Если верхний уровень не объект,
// возвращается ErrUnexpectedShape.
func DecodeRecord(data []byte) (Record, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return Record{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("%w: expected object, got %s", ErrUnexpectedShape, describeToken(tok))
	}

	rec, err := decodeObject(dec)
	if err != nil {
		return nil, err
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode record: trailing data after object")
	}
	return rec, nil
}

// decodeObject читает поля объекта; открывающая '{' уже прочитана.
func decodeObject(dec *json.Decoder) (Record, error) {
	rec := Record{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("decode record: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("decode record: unexpected key token %v", tok)
		}

		val, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		rec = rec.set(key, val)
	}

	// закрывающая '}'
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return rec, nil
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, fmt.Errorf("decode record: %w", err)
	}

	d, ok := tok.(json.Delim)
	if !ok {
		return ScalarValue(tok), nil
	}

	switch d {
	case '{':
		rec, err := decodeObject(dec)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: KindRecord, Record: rec}, nil
	case '[':
		items := []Value{}
		for dec.More() {
			item, err := decodeValue(dec)
			if err != nil {
				return Value{}, err
			}
			items = append(items, item)
		}
		if _, err := dec.Token(); err != nil {
			return Value{}, fmt.Errorf("decode record: %w", err)
		}
		return Value{Kind: KindList, List: items}, nil
	default:
		return Value{}, fmt.Errorf("decode record: unexpected delimiter %v", d)
	}
}

func describeToken(tok json.Token) string {
	switch t := tok.(type) {
	case json.Delim:
		if t == '[' {
			return "list"
		}
		return t.String()
	case nil:
		return "null"
	case string:
		return "string"
	case json.Number:
		return "number"
	case bool:
		return "bool"
	default:
		return fmt.Sprintf("%T", t)
	}
}
