package rowio

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/flarebyte/textsafety/internal/stage"
)

// csvReader treats the header row as the schema. All fields are strings;
// empty cells are nil.
type csvReader struct {
	r      *csv.Reader
	schema stage.Schema
	line   int
}

func newCSVReader(r io.Reader) *csvReader {
	cr := csv.NewReader(r)
	cr.ReuseRecord = false
	return &csvReader{r: cr}
}

func (c *csvReader) Next(ctx context.Context) (stage.Schema, stage.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if c.schema == nil {
		header, err := c.r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, nil, io.EOF
			}
			return nil, nil, fmt.Errorf("csv header: %w", err)
		}
		c.schema = make(stage.Schema, len(header))
		for i, name := range header {
			c.schema[i] = stage.Field{Name: name, Type: stage.TypeString}
		}
	}
	cells, err := c.r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, io.EOF
		}
		return nil, nil, fmt.Errorf("csv row %d: %w", c.line+1, err)
	}
	c.line++
	rec := make(stage.Record, len(cells))
	for i, cell := range cells {
		if cell != "" {
			rec[i] = cell
		}
	}
	return c.schema, rec, nil
}

type csvWriter struct {
	w          *csv.Writer
	wroteHead  bool
	headerSize int
}

func newCSVWriter(w io.Writer) *csvWriter {
	return &csvWriter{w: csv.NewWriter(w)}
}

func (c *csvWriter) Write(schema stage.Schema, rec stage.Record) error {
	if !c.wroteHead {
		if err := c.w.Write(schema.Names()); err != nil {
			return err
		}
		c.wroteHead = true
		c.headerSize = len(schema)
	}
	cells := make([]string, c.headerSize)
	for i := 0; i < c.headerSize && i < len(rec); i++ {
		cells[i] = formatCell(rec[i])
	}
	return c.w.Write(cells)
}

func (c *csvWriter) Flush() error {
	c.w.Flush()
	return c.w.Error()
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return string(x)
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	default:
		b, err := jsonAPI.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	}
}
