package run

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/flarebyte/textsafety/internal/config"
	"github.com/flarebyte/textsafety/internal/metrics"
	"github.com/flarebyte/textsafety/internal/rowio"
	"github.com/flarebyte/textsafety/internal/stage"
)

// pipeline runs Copies independent enrichers over one row stream and writes
// their rows back in input order.
type pipeline struct {
	Stage         config.Stage
	Copies        int
	Reader        rowio.Reader
	Writer        rowio.Writer
	Log           *zap.Logger
	Metrics       *metrics.Stage
	Progress      *progressReporter
	NewClassifier func() stage.Classifier
}

type row struct {
	seq    int
	schema stage.Schema
	rec    stage.Record
}

type enrichedRow struct {
	row
	apiError bool
}

// copyInput feeds one stage copy from its dispatch channel.
type copyInput struct {
	rows <-chan row
	last int
}

func (c *copyInput) Next(ctx context.Context) (stage.Schema, stage.Record, error) {
	select {
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	case r, ok := <-c.rows:
		if !ok {
			return nil, nil, io.EOF
		}
		c.last = r.seq
		return r.schema, r.rec, nil
	}
}

// copyOutput tags each enriched row with the sequence number of the input
// row it came from. A copy handles one row at a time, so that is the last
// row its input handed out.
type copyOutput struct {
	in        *copyInput
	out       chan<- enrichedRow
	summary   func() stage.Summary
	apiErrors int
}

func (c *copyOutput) Put(ctx context.Context, schema stage.Schema, rec stage.Record) error {
	n := c.summary().APIErrors
	r := enrichedRow{row: row{seq: c.in.last, schema: schema, rec: rec}, apiError: n > c.apiErrors}
	c.apiErrors = n
	select {
	case <-ctx.Done():
		return ctx.Err()
	case c.out <- r:
		return nil
	}
}

func (c *copyOutput) Done() error { return nil }

type readResult struct {
	row
	err error
}

// readRows pulls rows from the reader until EOF, an error, or stop is
// closed. The channel is closed on EOF.
func (p *pipeline) readRows(ctx context.Context, stop <-chan struct{}) <-chan readResult {
	out := make(chan readResult)
	go func() {
		defer close(out)
		for seq := 0; ; seq++ {
			schema, rec, err := p.Reader.Next(ctx)
			if errors.Is(err, io.EOF) {
				return
			}
			r := readResult{row: row{seq: seq, schema: schema, rec: rec}, err: err}
			select {
			case out <- r:
			case <-stop:
				return
			}
			if err != nil {
				return
			}
		}
	}()
	return out
}

func (p *pipeline) run(ctx context.Context) (stage.Summary, error) {
	copies := p.Copies
	if copies < 1 {
		copies = 1
	}
	log := p.Log
	if log == nil {
		log = zap.NewNop()
	}

	g, gctx := errgroup.WithContext(ctx)
	dispatch := make([]chan row, copies)
	for i := range dispatch {
		dispatch[i] = make(chan row, 1)
	}
	results := make(chan enrichedRow, copies)

	// The read loop stays outside the group: a Read blocked on an idle
	// stream cannot be interrupted, and the run must still end on cancel.
	stop := make(chan struct{})
	defer close(stop)
	source := p.readRows(gctx, stop)

	g.Go(func() error {
		defer func() {
			for _, ch := range dispatch {
				close(ch)
			}
		}()
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case r, ok := <-source:
				if !ok {
					return nil
				}
				if r.err != nil {
					return r.err
				}
				select {
				case <-gctx.Done():
					return gctx.Err()
				case dispatch[r.seq%copies] <- r.row:
				}
			}
		}
	})

	summaries := make([]stage.Summary, copies)
	var running sync.WaitGroup
	for i := 0; i < copies; i++ {
		i := i
		running.Add(1)
		g.Go(func() error {
			defer running.Done()
			clog := log.With(zap.Int("copy", i), zap.String("run_id", uuid.NewString()))
			e := stage.New(p.Stage, p.NewClassifier(), stage.WithLogger(clog), stage.WithMetrics(p.Metrics))
			in := &copyInput{rows: dispatch[i]}
			out := &copyOutput{in: in, out: results, summary: e.Summary}
			err := e.Run(gctx, in, out)
			e.Close()
			summaries[i] = e.Summary()
			return err
		})
	}
	go func() {
		running.Wait()
		close(results)
	}()

	g.Go(func() error {
		pending := map[int]enrichedRow{}
		next := 0
		for r := range results {
			pending[r.seq] = r
			for {
				ready, ok := pending[next]
				if !ok {
					break
				}
				delete(pending, next)
				next++
				if err := p.Writer.Write(ready.schema, ready.rec); err != nil {
					return err
				}
				p.Progress.row(ready.apiError)
			}
		}
		return p.Writer.Flush()
	})

	err := g.Wait()
	var total stage.Summary
	for _, s := range summaries {
		total.Merge(s)
	}
	return total, err
}
