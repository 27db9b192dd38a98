package stage

import (
	"context"
	"io"
)

// Input delivers rows to one stage copy. Next returns io.EOF once upstream
// is exhausted. The schema describes the returned record.
type Input interface {
	Next(ctx context.Context) (Schema, Record, error)
}

// Output receives enriched rows. Done is called once after the last row.
type Output interface {
	Put(ctx context.Context, schema Schema, rec Record) error
	Done() error
}

// SliceInput serves a fixed list of records sharing one schema.
type SliceInput struct {
	Schema  Schema
	Records []Record
	pos     int
}

// Next implements Input.
func (s *SliceInput) Next(_ context.Context) (Schema, Record, error) {
	if s.pos >= len(s.Records) {
		return nil, nil, io.EOF
	}
	r := s.Records[s.pos]
	s.pos++
	return s.Schema, r, nil
}

// CollectOutput keeps every row it receives.
type CollectOutput struct {
	Schema  Schema
	Records []Record
	Closed  bool
}

// Put implements Output.
func (c *CollectOutput) Put(_ context.Context, schema Schema, rec Record) error {
	c.Schema = schema
	c.Records = append(c.Records, rec)
	return nil
}

// Done implements Output.
func (c *CollectOutput) Done() error {
	c.Closed = true
	return nil
}
