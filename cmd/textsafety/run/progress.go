package run

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/flarebyte/textsafety/internal/config"
)

type progressReporter struct {
	enabled  bool
	interval time.Duration
	w        io.Writer

	mu        sync.Mutex
	processed int
	apiErrors int
	stop      chan struct{}
	stopped   chan struct{}
}

func newProgressReporter(ui config.UI, w io.Writer) *progressReporter {
	if !ui.Progress {
		return &progressReporter{enabled: false}
	}
	interval := ui.ProgressIntervalMs
	if interval <= 0 {
		interval = config.DefaultProgressIntervalMs
	}
	return &progressReporter{
		enabled:  true,
		interval: time.Duration(interval) * time.Millisecond,
		w:        w,
	}
}

// start emits a line every interval until finish is called or ctx ends.
func (p *progressReporter) start(ctx context.Context) {
	if p == nil || !p.enabled {
		return
	}
	p.stop = make(chan struct{})
	p.stopped = make(chan struct{})
	go func() {
		defer close(p.stopped)
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				p.emit()
			case <-p.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (p *progressReporter) row(apiError bool) {
	if p == nil || !p.enabled {
		return
	}
	p.mu.Lock()
	p.processed++
	if apiError {
		p.apiErrors++
	}
	p.mu.Unlock()
}

// finish stops the ticker and emits the final counts.
func (p *progressReporter) finish() {
	if p == nil || !p.enabled {
		return
	}
	if p.stop != nil {
		close(p.stop)
		<-p.stopped
		p.stop = nil
	}
	p.emit()
}

func (p *progressReporter) emit() {
	if p == nil || !p.enabled || p.w == nil {
		return
	}
	p.mu.Lock()
	_, _ = fmt.Fprintf(p.w, "progress processed=%d api_errors=%d\n", p.processed, p.apiErrors)
	p.mu.Unlock()
}
