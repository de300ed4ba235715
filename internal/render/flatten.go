package render

import (
	"strings"
)

// responsePrefix — служебный сегмент обёртки ответа backend'а.
const responsePrefix = "response"

// FlatField — лист Record под dotted-ключом.
type FlatField struct {
	Key   string
	Value Value
}

// Text возвращает значение поля в виде строки.
func (f FlatField) Text() string {
	return f.Value.String()
}

// Flatten разворачивает Record в плоский список полей.
//
// Вложенные объекты раскрываются рекурсивно с ключами "outer.inner",
// списки и скаляры становятся листьями. Порядок — порядок полей документа,
// обход в глубину. Ведущий сегмент "response" снимается (не более одного раза),
// если после этого ключ не совпадёт с ключом другого листа.
func Flatten(rec Record) []FlatField {
	var leaves []FlatField
	collectLeaves(&leaves, nil, rec)

	full := make(map[string]bool, len(leaves))
	for _, l := range leaves {
		full[l.Key] = true
	}

	used := make(map[string]bool, len(leaves))
	out := make([]FlatField, 0, len(leaves))
	for _, l := range leaves {
		key := StripResponsePrefix(l.Key)
		if key != l.Key && (full[key] || used[key]) {
			key = l.Key
		}
		used[key] = true
		out = append(out, FlatField{Key: key, Value: l.Value})
	}
	return out
}

// FlattenJSON разбирает JSON-объект и разворачивает его.
func FlattenJSON(data []byte) ([]FlatField, error) {
	rec, err := DecodeRecord(data)
	if err != nil {
		return nil, err
	}
	return Flatten(rec), nil
}

func collectLeaves(out *[]FlatField, prefix []string, rec Record) {
	for _, f := range rec {
		path := append(prefix[:len(prefix):len(prefix)], f.Key)
		if f.Value.Kind == KindRecord {
			collectLeaves(out, path, f.Value.Record)
			continue
		}
		*out = append(*out, FlatField{Key: strings.Join(path, "."), Value: f.Value})
	}
}

// StripResponsePrefix снимает один ведущий сегмент "response." с ключа.
//
//	"response.temperature"           -> "temperature"
//	"response.sensor.response.value" -> "sensor.response.value"
//	"response"                       -> "response"
func StripResponsePrefix(key string) string {
	rest, ok := strings.CutPrefix(key, responsePrefix+".")
	if !ok || rest == "" {
		return key
	}
	return rest
}

// LeafCount возвращает число листьев Record (пустые вложенные объекты листьев не дают).
func LeafCount(rec Record) int {
	n := 0
	for _, f := range rec {
		if f.Value.Kind == KindRecord {
			n += LeafCount(f.Value.Record)
			continue
		}
		n++
	}
	return n
}
