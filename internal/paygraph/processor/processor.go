// Package processor drives one payment stream through a window controller and
// hands every resulting median to the configured sinks.
package processor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/chenzhangda16/paygraph/internal/paygraph/event"
	"github.com/chenzhangda16/paygraph/internal/paygraph/ingest"
	"github.com/chenzhangda16/paygraph/internal/paygraph/median"
	"github.com/chenzhangda16/paygraph/internal/paygraph/metrics"
	"github.com/chenzhangda16/paygraph/internal/paygraph/out"
	"github.com/chenzhangda16/paygraph/internal/paygraph/retry"
	"github.com/chenzhangda16/paygraph/internal/paygraph/window"
)

type Config struct {
	Stream string // file path or "<topic>/<partition>"

	WindowSec       int64
	Recompute       bool
	CheckInvariants bool

	LogEvery int64 // 0 disables progress logs
	Retry    retry.Policy
}

// Processor is not safe for concurrent use. Run one per stream.
type Processor struct {
	cfg  Config
	ctl  *window.Controller
	sink out.Sink // members retried independently
	log  *zap.SugaredLogger

	seq       uint64
	parseErrs uint64

	events  map[window.Transition]prometheus.Counter
	parse   prometheus.Counter
	evicted prometheus.Counter
}

func New(cfg Config, sink out.Sink, log *zap.SugaredLogger) *Processor {
	opts := []window.Option{window.WithWidth(cfg.WindowSec)}
	if cfg.Recompute {
		opts = append(opts, window.WithRecompute())
	}
	p := &Processor{
		cfg:     cfg,
		ctl:     window.NewController(opts...),
		log:     log.Named("processor").With("stream", cfg.Stream),
		events:  make(map[window.Transition]prometheus.Counter, 5),
		parse:   metrics.ParseErrorsTotal.WithLabelValues(cfg.Stream),
		evicted: metrics.EvictedEdgesTotal.WithLabelValues(cfg.Stream),
	}
	for _, t := range window.Transitions() {
		p.events[t] = metrics.EventsTotal.WithLabelValues(cfg.Stream, t.String())
	}
	policy := cfg.Retry
	if policy.OnRetry == nil {
		policy.OnRetry = func(attempt int, wait time.Duration, err error) {
			p.log.Warnw("emit failed, retrying", "attempt", attempt, "wait", wait, "err", err)
		}
	}
	p.sink = out.RetryEach(sink, policy)
	return p
}

func (p *Processor) Controller() *window.Controller { return p.ctl }

// Seq is the number of medians emitted so far.
func (p *Processor) Seq() uint64 { return p.seq }

func (p *Processor) ParseErrors() uint64 { return p.parseErrs }

// HandleLine parses one input line. Blank lines are skipped silently and
// unparsable ones are logged and skipped; only sink and invariant failures are
// returned.
func (p *Processor) HandleLine(ctx context.Context, line []byte) error {
	ev, err := ingest.ParseLine(line)
	if err != nil {
		if errors.Is(err, ingest.ErrBlankLine) {
			return nil
		}
		p.parseErrs++
		p.parse.Add(1)
		p.log.Warnw("skip bad record", "err", err, "line", truncate(line, 256))
		return nil
	}
	return p.Handle(ctx, ev)
}

// Handle applies ev and emits exactly one median record.
func (p *Processor) Handle(ctx context.Context, ev event.Payment) error {
	res := p.ctl.Apply(ev)
	p.seq++

	p.events[res.Transition].Add(1)
	if res.Evicted > 0 {
		p.evicted.Add(float64(res.Evicted))
	}
	st := p.ctl.Store()
	metrics.GraphVertices.WithLabelValues(p.cfg.Stream).Set(float64(st.NumVertices()))
	metrics.GraphEdges.WithLabelValues(p.cfg.Stream).Set(float64(st.NumEdges()))
	metrics.MedianDegree.WithLabelValues(p.cfg.Stream).Set(median.Truncate(res.Median))

	if res.Transition == window.StaleRejected {
		p.log.Debugw("stale payment", "ts", ev.Ts, "max_ts", res.MaxTs)
	}

	if p.cfg.CheckInvariants {
		if err := st.Check(p.ctl.Width()); err != nil {
			return fmt.Errorf("invariant violated after seq %d: %w", p.seq, err)
		}
	}

	rec := out.MedianRecord{
		Stream:     p.cfg.Stream,
		Seq:        p.seq,
		EventTs:    ev.Ts,
		Transition: res.Transition.String(),
		Median:     median.Format(res.Median),
	}
	if err := p.sink.Emit(ctx, out.TypeMedian, rec); err != nil {
		return fmt.Errorf("emit seq %d: %w", p.seq, err)
	}

	if p.cfg.LogEvery > 0 && p.seq%uint64(p.cfg.LogEvery) == 0 {
		p.log.Infow("progress",
			"seq", p.seq,
			"max_ts", res.MaxTs,
			"vertices", st.NumVertices(),
			"edges", st.NumEdges(),
			"median", rec.Median,
			"parse_errors", p.parseErrs,
		)
	}
	return nil
}

// Run processes r line by line until EOF or ctx is done.
func (p *Processor) Run(ctx context.Context, r io.Reader) error {
	err := ingest.ScanLines(ctx, r, func(line []byte) error {
		return p.HandleLine(ctx, line)
	})
	p.log.Infow("stream done", "records", p.seq, "parse_errors", p.parseErrs, "err", err)
	return err
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
