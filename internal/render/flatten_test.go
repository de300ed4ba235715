package render

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestFlatten_OneLevel(t *testing.T) {
	rec := Record{
		F("id", ScalarValue(json.Number("7"))),
		F("sensor", RecordValue(
			F("temperature", ScalarValue(json.Number("21.5"))),
			F("unit", ScalarValue("C")),
		)),
		F("ok", ScalarValue(true)),
	}

	got := Flatten(rec)

	want := []struct{ key, text string }{
		{"id", "7"},
		{"sensor.temperature", "21.5"},
		{"sensor.unit", "C"},
		{"ok", "true"},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d fields, got %d: %v", len(want), len(got), got)
	}
	for i, w := range want {
		if got[i].Key != w.key || got[i].Text() != w.text {
			t.Errorf("field %d: expected %s=%s, got %s=%s", i, w.key, w.text, got[i].Key, got[i].Text())
		}
	}
}

func TestFlatten_DeepNesting(t *testing.T) {
	rec := Record{
		F("a", RecordValue(
			F("b", RecordValue(
				F("c", ScalarValue("x")),
			)),
			F("d", ScalarValue(nil)),
		)),
	}

	got := Flatten(rec)
	if len(got) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(got))
	}
	if got[0].Key != "a.b.c" || got[0].Text() != "x" {
		t.Errorf("expected a.b.c=x, got %s=%s", got[0].Key, got[0].Text())
	}
	if got[1].Key != "a.d" || got[1].Text() != "null" {
		t.Errorf("expected a.d=null, got %s=%s", got[1].Key, got[1].Text())
	}
}

func TestFlatten_PreservesLeafCount(t *testing.T) {
	docs := []string{
		`{}`,
		`{"a": 1}`,
		`{"a": 1, "b": {"c": 2, "d": [1, 2, 3]}, "e": null}`,
		`{"response": {"x": 1, "y": {"z": true}}, "w": "s"}`,
		`{"empty": {}, "n": 0}`,
	}

	for _, doc := range docs {
		t.Run(doc, func(t *testing.T) {
			rec, err := DecodeRecord([]byte(doc))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got, want := len(Flatten(rec)), LeafCount(rec); got != want {
				t.Errorf("expected %d fields, got %d", want, got)
			}
		})
	}
}

func TestFlatten_ResponsePrefix(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want []string
	}{
		{
			name: "nested response wrapper",
			doc:  `{"response": {"temperature": 20}}`,
			want: []string{"temperature"},
		},
		{
			name: "literal dotted key",
			doc:  `{"response.temperature": 20, "humidity": 40}`,
			want: []string{"temperature", "humidity"},
		},
		{
			name: "only leading segment stripped",
			doc:  `{"response": {"sensor": {"response": {"value": 1}}}}`,
			want: []string{"sensor.response.value"},
		},
		{
			name: "bare response key kept",
			doc:  `{"response": "ok"}`,
			want: []string{"response"},
		},
		{
			name: "prefix not in first segment",
			doc:  `{"data": {"response": {"v": 1}}}`,
			want: []string{"data.response.v"},
		},
		{
			name: "collision keeps full key",
			doc:  `{"temperature": 1, "response": {"temperature": 2}}`,
			want: []string{"temperature", "response.temperature"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields, err := FlattenJSON([]byte(tt.doc))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(fields) != len(tt.want) {
				t.Fatalf("expected %d fields, got %d", len(tt.want), len(fields))
			}
			for i, key := range tt.want {
				if fields[i].Key != key {
					t.Errorf("field %d: expected key %q, got %q", i, key, fields[i].Key)
				}
			}
		})
	}
}

func TestStripResponsePrefix(t *testing.T) {
	tests := map[string]string{
		"response.temperature":           "temperature",
		"humidity":                       "humidity",
		"response.sensor.response.value": "sensor.response.value",
		"response":                       "response",
		"responses.x":                    "responses.x",
	}

	for in, want := range tests {
		got := StripResponsePrefix(in)
		if got != want {
			t.Errorf("StripResponsePrefix(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFlattenJSON_OrderFromDocument(t *testing.T) {
	fields, err := FlattenJSON([]byte(`{"z": 1, "a": {"y": 2, "b": 3}, "m": 4}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"z", "a.y", "a.b", "m"}
	for i, key := range want {
		if fields[i].Key != key {
			t.Errorf("field %d: expected %q, got %q", i, key, fields[i].Key)
		}
	}
}

func TestFlattenJSON_ListIsLeaf(t *testing.T) {
	fields, err := FlattenJSON([]byte(`{"tags": ["a", "b"], "points": [{"x": 1}]}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(fields))
	}
	if fields[0].Text() != `["a","b"]` {
		t.Errorf("expected stringified list, got %s", fields[0].Text())
	}
	if fields[1].Text() != `[{"x":1}]` {
		t.Errorf("expected stringified list of records, got %s", fields[1].Text())
	}
}

func TestFlattenJSON_Empty(t *testing.T) {
	for _, doc := range []string{"", "  ", "{}"} {
		fields, err := FlattenJSON([]byte(doc))
		if err != nil {
			t.Errorf("%q: unexpected error: %v", doc, err)
		}
		if len(fields) != 0 {
			t.Errorf("%q: expected no fields, got %d", doc, len(fields))
		}
	}
}

func TestDecodeRecord_UnexpectedShape(t *testing.T) {
	for _, doc := range []string{`[{"a": 1}]`, `"text"`, `42`, `null`} {
		_, err := DecodeRecord([]byte(doc))
		if !errors.Is(err, ErrUnexpectedShape) {
			t.Errorf("%s: expected ErrUnexpectedShape, got %v", doc, err)
		}
	}
}

func TestDecodeRecord_Malformed(t *testing.T) {
	for _, doc := range []string{`{"a": }`, `{"a": 1`, `{"a": 1} {"b": 2}`} {
		_, err := DecodeRecord([]byte(doc))
		if err == nil {
			t.Errorf("%s: expected error, got nil", doc)
		}
		if errors.Is(err, ErrUnexpectedShape) {
			t.Errorf("%s: malformed JSON should not be ErrUnexpectedShape", doc)
		}
	}
}

func TestDecodeRecord_DuplicateKeyLastWins(t *testing.T) {
	rec, err := DecodeRecord([]byte(`{"a": 1, "b": 2, "a": 3}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rec) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(rec))
	}
	v, _ := rec.Get("a")
	if v.String() != "3" {
		t.Errorf("expected a=3, got %s", v.String())
	}
	if rec[0].Key != "a" {
		t.Errorf("expected a to keep first position, got %s", rec[0].Key)
	}
}

func TestRecord_MarshalJSONKeepsOrder(t *testing.T) {
	doc := `{"z":1,"a":{"y":[true,null],"b":"s"}}`
	rec, err := DecodeRecord([]byte(doc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != doc {
		t.Errorf("expected %s, got %s", doc, data)
	}
}
