// Package window classifies each payment against the watermark (the highest
// admitted timestamp) and applies the matching transition to the graph.
//
// The window is the half-open interval (maxTs-W, maxTs]. Only events that move
// the watermark forward trigger eviction; late events inside the window are
// folded in without moving it, and anything at or beyond W behind it is dropped.
package window

import (
	"github.com/chenzhangda16/paygraph/internal/paygraph/event"
	"github.com/chenzhangda16/paygraph/internal/paygraph/graph"
	"github.com/chenzhangda16/paygraph/internal/paygraph/median"
)

type Transition int

const (
	Init Transition = iota
	WindowReset
	InOrder
	LateAccepted
	StaleRejected
)

var transitionNames = [...]string{
	Init:          "init",
	WindowReset:   "window_reset",
	InOrder:       "in_order",
	LateAccepted:  "late_accepted",
	StaleRejected: "stale_rejected",
}

func (t Transition) String() string {
	if t < 0 || int(t) >= len(transitionNames) {
		return "unknown"
	}
	return transitionNames[t]
}

// Transitions lists every transition, in declaration order.
func Transitions() []Transition {
	return []Transition{Init, WindowReset, InOrder, LateAccepted, StaleRejected}
}

// Result describes what Apply did with one event.
type Result struct {
	Transition Transition
	Median     float64
	MaxTs      int64
	Evicted    int
	Inserted   bool
	Updated    bool
}

// Controller owns the graph state of one stream. Not safe for concurrent use.
type Controller struct {
	width   int64
	store   *graph.Store
	tracker *median.Tracker // nil when recomputing from scratch

	median float64
}

func NewController(opts ...Option) *Controller {
	o := options{width: DefaultWidthSec}
	for _, opt := range opts {
		opt(&o)
	}
	c := &Controller{width: o.width}
	if o.recompute {
		c.store = graph.NewStore(o.capHint, nil)
	} else {
		c.tracker = median.NewTracker()
		c.store = graph.NewStore(o.capHint, c.tracker)
	}
	return c
}

func (c *Controller) Width() int64        { return c.width }
func (c *Controller) Store() *graph.Store { return c.store }

// Median is the value emitted for the last event.
func (c *Controller) Median() float64 { return c.median }

// Classify decides the transition for an event at ts without mutating state.
func (c *Controller) Classify(ts int64) Transition {
	if c.store.Empty() {
		return Init
	}
	delta := ts - c.store.MaxTs()
	switch {
	case delta >= c.width:
		return WindowReset
	case delta >= 0:
		return InOrder
	case delta > -c.width:
		return LateAccepted
	default:
		return StaleRejected
	}
}

// Apply classifies ev, mutates the graph accordingly and returns the median to
// emit. A rejected event leaves the previous median in place.
func (c *Controller) Apply(ev event.Payment) Result {
	k := graph.NewKey(ev.Actor, ev.Target)
	res := Result{Transition: c.Classify(ev.Ts)}

	switch res.Transition {
	case Init, WindowReset:
		// nothing held can be within W of the new watermark
		c.store.Reset(k, ev.Ts)
		res.Inserted = true
	case InOrder:
		c.store.Advance(ev.Ts)
		res.Inserted, res.Updated = c.store.Upsert(k, ev.Ts)
		res.Evicted = c.store.EvictOlderThan(c.store.MaxTs(), c.width)
	case LateAccepted:
		res.Inserted, res.Updated = c.store.Upsert(k, ev.Ts)
	}

	if res.Transition != StaleRejected {
		c.median = c.currentMedian()
	}
	res.Median = c.median
	res.MaxTs = c.store.MaxTs()
	return res
}

func (c *Controller) currentMedian() float64 {
	if c.tracker != nil {
		return c.tracker.Median()
	}
	return median.Of(c.store.Degrees())
}
