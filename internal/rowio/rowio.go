// Package rowio reads and writes schema-aligned rows as CSV or NDJSON.
package rowio

import (
	"context"
	"io"

	"github.com/flarebyte/textsafety/internal/stage"
)

const (
	FormatCSV    = "csv"
	FormatNDJSON = "ndjson"
)

// Reader yields rows; it satisfies stage.Input and returns io.EOF at the end.
type Reader interface {
	Next(ctx context.Context) (stage.Schema, stage.Record, error)
}

// Writer encodes rows. Flush must be called after the last row.
type Writer interface {
	Write(schema stage.Schema, rec stage.Record) error
	Flush() error
}

// ErrUnknownFormat is returned for an unsupported format name.
type ErrUnknownFormat struct{ name string }

func (e ErrUnknownFormat) Error() string { return "unknown row format: " + e.name }

// NewReader returns a reader for format over r.
func NewReader(format string, r io.Reader) (Reader, error) {
	switch format {
	case FormatCSV:
		return newCSVReader(r), nil
	case FormatNDJSON:
		return newNDJSONReader(r), nil
	default:
		return nil, ErrUnknownFormat{name: format}
	}
}

// NewWriter returns a writer for format over w.
func NewWriter(format string, w io.Writer) (Writer, error) {
	switch format {
	case FormatCSV:
		return newCSVWriter(w), nil
	case FormatNDJSON:
		return newNDJSONWriter(w), nil
	default:
		return nil, ErrUnknownFormat{name: format}
	}
}
