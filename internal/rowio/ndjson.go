package rowio

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/flarebyte/textsafety/internal/stage"
)

// jsonAPI keeps numbers as json.Number so they are written back exactly as
// they were read.
var jsonAPI = jsoniter.Config{
	EscapeHTML:             false,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	UseNumber:              true,
}.Froze()

// ndjsonReader takes the schema from the first object: its keys in document
// order become the fields and its value kinds become the field types. Later
// objects are aligned by name; missing keys are nil and unknown keys dropped.
type ndjsonReader struct {
	r      *bufio.Reader
	schema stage.Schema
	line   int
}

func newNDJSONReader(r io.Reader) *ndjsonReader {
	return &ndjsonReader{r: bufio.NewReader(r)}
}

func (n *ndjsonReader) Next(ctx context.Context) (stage.Schema, stage.Record, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		line, err := n.r.ReadBytes('\n')
		if len(line) == 0 && errors.Is(err, io.EOF) {
			return nil, nil, io.EOF
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, nil, err
		}
		n.line++
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			if errors.Is(err, io.EOF) {
				return nil, nil, io.EOF
			}
			continue
		}
		keys, values, perr := parseObject(line)
		if perr != nil {
			return nil, nil, fmt.Errorf("ndjson line %d: %v", n.line, perr)
		}
		if n.schema == nil {
			n.schema = inferSchema(keys, values)
		}
		return n.schema, align(n.schema, keys, values), nil
	}
}

// parseObject decodes one JSON object keeping key order.
func parseObject(line []byte) ([]string, []any, error) {
	iter := jsoniter.ParseBytes(jsonAPI, line)
	if iter.WhatIsNext() != jsoniter.ObjectValue {
		return nil, nil, errors.New("expected JSON object")
	}
	var keys []string
	var values []any
	iter.ReadObjectCB(func(it *jsoniter.Iterator, field string) bool {
		keys = append(keys, field)
		values = append(values, it.Read())
		return true
	})
	if iter.Error != nil && !errors.Is(iter.Error, io.EOF) {
		return nil, nil, iter.Error
	}
	return keys, values, nil
}

func inferSchema(keys []string, values []any) stage.Schema {
	s := make(stage.Schema, len(keys))
	for i, k := range keys {
		s[i] = stage.Field{Name: k, Type: typeOf(values[i])}
	}
	return s
}

func typeOf(v any) stage.FieldType {
	switch x := v.(type) {
	case bool:
		return stage.TypeBoolean
	case json.Number:
		if strings.ContainsAny(string(x), ".eE") {
			return stage.TypeNumber
		}
		return stage.TypeInteger
	case float64:
		return stage.TypeNumber
	default:
		return stage.TypeString
	}
}

func align(schema stage.Schema, keys []string, values []any) stage.Record {
	rec := make(stage.Record, len(schema))
	for i, k := range keys {
		if idx := schema.IndexOf(k); idx >= 0 {
			rec[idx] = values[i]
		}
	}
	return rec
}

type ndjsonWriter struct {
	stream *jsoniter.Stream
}

func newNDJSONWriter(w io.Writer) *ndjsonWriter {
	return &ndjsonWriter{stream: jsoniter.NewStream(jsonAPI, w, 4096)}
}

// Write emits one object whose keys follow the schema order.
func (n *ndjsonWriter) Write(schema stage.Schema, rec stage.Record) error {
	s := n.stream
	s.WriteObjectStart()
	for i, f := range schema {
		if i > 0 {
			s.WriteMore()
		}
		s.WriteObjectField(f.Name)
		var v any
		if i < len(rec) {
			v = rec[i]
		}
		s.WriteVal(v)
	}
	s.WriteObjectEnd()
	s.WriteRaw("\n")
	if s.Error != nil {
		return s.Error
	}
	if s.Buffered() > 4096 {
		return s.Flush()
	}
	return nil
}

func (n *ndjsonWriter) Flush() error {
	return n.stream.Flush()
}
