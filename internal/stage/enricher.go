package stage

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/flarebyte/textsafety/internal/config"
	"github.com/flarebyte/textsafety/internal/metrics"
	"github.com/flarebyte/textsafety/internal/safety"
	"go.uber.org/zap"
)

// State is the lifecycle position of an Enricher.
type State int

const (
	Uninitialized State = iota
	Ready
	Draining
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Ready:
		return "ready"
	case Draining:
		return "draining"
	default:
		return "unknown"
	}
}

// Classifier is the remote call made for every non-empty text.
type Classifier interface {
	Classify(ctx context.Context, req safety.Request) safety.Outcome
}

// Summary counts the rows an Enricher emitted.
type Summary struct {
	Rows      int
	Skipped   int
	Safe      int
	Unsafe    int
	APIErrors int
}

func (s *Summary) add(label string) {
	s.Rows++
	switch label {
	case "skipped":
		s.Skipped++
	case "api_error":
		s.APIErrors++
	case "safe":
		s.Safe++
	case "unsafe":
		s.Unsafe++
	}
}

// Merge adds the counts of o to s.
func (s *Summary) Merge(o Summary) {
	s.Rows += o.Rows
	s.Skipped += o.Skipped
	s.Safe += o.Safe
	s.Unsafe += o.Unsafe
	s.APIErrors += o.APIErrors
}

// Enricher is one copy of the text safety stage. It processes records
// strictly one at a time and is not safe for concurrent use; parallel copies
// each get their own Enricher.
type Enricher struct {
	cfg        config.Stage
	classifier Classifier
	log        *zap.Logger
	metrics    *metrics.Stage
	now        func() time.Time

	state   State
	res     Resolution
	summary Summary
}

// Option customises an Enricher.
type Option func(*Enricher)

// WithLogger sets the diagnostics logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Enricher) { e.log = l }
}

// WithMetrics records row results and call latencies.
func WithMetrics(m *metrics.Stage) Option {
	return func(e *Enricher) { e.metrics = m }
}

// New creates an uninitialized Enricher. The schema is resolved from the
// first record it sees.
func New(cfg config.Stage, c Classifier, opts ...Option) *Enricher {
	e := &Enricher{
		cfg:        cfg,
		classifier: c,
		log:        zap.NewNop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// State returns the current lifecycle state.
func (e *Enricher) State() State { return e.state }

// OutputSchema returns the resolved output schema, or nil before the first
// record.
func (e *Enricher) OutputSchema() Schema { return e.res.Output }

// Summary returns the counts so far.
func (e *Enricher) Summary() Summary { return e.summary }

// Process enriches one record described by schema. The only error before
// draining is *ErrFieldNotFound on the first record; classification
// problems are written into the row instead.
func (e *Enricher) Process(ctx context.Context, schema Schema, rec Record) (Record, error) {
	switch e.state {
	case Draining:
		return nil, ErrDrained
	case Uninitialized:
		res, err := ResolveSchema(schema, e.cfg)
		if err != nil {
			return nil, err
		}
		e.res = res
		e.state = Ready
		e.log.Info("schema resolved",
			zap.String("field", e.cfg.InputTextField),
			zap.Int("index", res.InputIndex),
			zap.Strings("output", res.Output.Names()))
	}

	row := e.summary.Rows + 1
	var (
		t       Triple
		skipped bool
		failed  bool
	)
	text, ok := rec.StringAt(e.res.InputIndex)
	if !ok || text == "" {
		skipped = true
		t = SkipTriple()
		e.log.Debug("skipping empty text", zap.Int("row", row))
	} else {
		start := e.now()
		outcome := e.classifier.Classify(ctx, safety.Request{
			Endpoint:  e.cfg.ServiceURL,
			Text:      text,
			Threshold: e.cfg.Threshold,
		})
		elapsed := e.now().Sub(start)
		t = Resolve(outcome)
		failed = outcome.Failed()
		if failed {
			e.metrics.Call(elapsed, outcome.Kind.String(), string(outcome.Reason))
			e.log.Error("safety API call failed",
				zap.Int("row", row),
				zap.String("kind", outcome.Kind.String()),
				zap.String("reason", string(outcome.Reason)),
				zap.Int("status", outcome.Status),
				zap.String("error", sanitizeErrorMessage(outcome.Message)))
		} else {
			e.metrics.Call(elapsed, "", "")
			e.log.Debug("safety API response",
				zap.Int("row", row),
				zap.Bool("is_safe", outcome.IsSafe),
				zap.String("category", t.Category),
				zap.Float64("score", outcome.Score),
				zap.Duration("elapsed", elapsed))
		}
	}

	label := resultLabel(t, skipped, failed)
	e.summary.add(label)
	e.metrics.Row(label)
	return appendTriple(rec, e.res.InputWidth, t), nil
}

// Step pulls one record from in, enriches it and hands it to out. It
// returns false after upstream is exhausted and out has been told so.
func (e *Enricher) Step(ctx context.Context, in Input, out Output) (bool, error) {
	if e.state == Draining {
		return false, nil
	}
	schema, rec, err := in.Next(ctx)
	if errors.Is(err, io.EOF) {
		e.state = Draining
		return false, out.Done()
	}
	if err != nil {
		return false, err
	}
	enriched, err := e.Process(ctx, schema, rec)
	if err != nil {
		return false, err
	}
	if err := out.Put(ctx, e.res.Output, enriched); err != nil {
		return false, err
	}
	return true, nil
}

// Run steps until upstream is exhausted or a fatal error occurs.
func (e *Enricher) Run(ctx context.Context, in Input, out Output) error {
	for {
		more, err := e.Step(ctx, in, out)
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
}

// Close ends the run. Further records are rejected with ErrDrained.
func (e *Enricher) Close() {
	e.state = Draining
	s := e.summary
	e.log.Info("stage finished",
		zap.Int("rows", s.Rows),
		zap.Int("skipped", s.Skipped),
		zap.Int("safe", s.Safe),
		zap.Int("unsafe", s.Unsafe),
		zap.Int("api_errors", s.APIErrors))
}
