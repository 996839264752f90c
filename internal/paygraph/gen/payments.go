// Package gen produces synthetic payment feeds in the input line format,
// including out-of-order, stale and window-resetting events.
package gen

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"

	"github.com/chenzhangda16/paygraph/internal/paygraph/event"
	"github.com/chenzhangda16/paygraph/internal/paygraph/ingest"
	"github.com/chenzhangda16/paygraph/pkg/rng"
)

type Config struct {
	Users     int
	Start     int64   // unix seconds of the first payment
	MaxStep   int64   // in-order payments advance 0..MaxStep seconds
	WindowSec int64   // used to place late, stale and resetting payments
	LateRatio float64 // share of payments behind the newest one, stale included
	GapRatio  float64 // share of payments jumping a full window ahead
}

func DefaultConfig() Config {
	return Config{
		Users:     200,
		Start:     1459999999,
		MaxStep:   5,
		WindowSec: 60,
		LateRatio: 0.1,
		GapRatio:  0.001,
	}
}

func (c Config) Validate() error {
	switch {
	case c.Users < 2:
		return errors.New("gen: need at least 2 users")
	case c.MaxStep < 0 || c.WindowSec <= 0:
		return fmt.Errorf("gen: bad timing max_step=%d window=%d", c.MaxStep, c.WindowSec)
	case c.LateRatio < 0 || c.GapRatio < 0 || c.LateRatio+c.GapRatio > 1:
		return fmt.Errorf("gen: bad ratios late=%v gap=%v", c.LateRatio, c.GapRatio)
	}
	return nil
}

// PaymentGen is deterministic for a given Config and rng.Factory seed.
type PaymentGen struct {
	cfg   Config
	users []string
	now   int64

	rUser *rand.Rand
	rStep *rand.Rand
	rLate *rand.Rand
}

func NewPaymentGen(cfg Config, rf *rng.Factory) (*PaymentGen, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &PaymentGen{
		cfg:   cfg,
		users: GenUsers(cfg.Users, rf.R(rng.Names)),
		now:   cfg.Start,
		rUser: rf.R(rng.UserPick),
		rStep: rf.R(rng.TimeStep),
		rLate: rf.R(rng.LateShift),
	}, nil
}

func (g *PaymentGen) Users() []string { return g.users }

// Next returns a payment between two distinct users. Late payments land up to
// two windows behind the newest one, so about half of them are stale.
func (g *PaymentGen) Next() event.Payment {
	a := g.rUser.Intn(len(g.users))
	b := g.rUser.Intn(len(g.users))
	for b == a {
		b = g.rUser.Intn(len(g.users))
	}

	ts := g.now
	switch x := g.rLate.Float64(); {
	case x < g.cfg.LateRatio:
		ts = g.now - 1 - g.rLate.Int63n(2*g.cfg.WindowSec)
	case x < g.cfg.LateRatio+g.cfg.GapRatio:
		g.now += g.cfg.WindowSec + g.rStep.Int63n(g.cfg.WindowSec)
		ts = g.now
	default:
		if g.cfg.MaxStep > 0 {
			g.now += g.rStep.Int63n(g.cfg.MaxStep + 1)
		}
		ts = g.now
	}
	return event.Payment{Actor: g.users[a], Target: g.users[b], Ts: ts}
}

// WriteLines writes n payments to w, one JSON line each.
func (g *PaymentGen) WriteLines(ctx context.Context, w io.Writer, n int) error {
	for i := 0; i < n; i++ {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		b, err := ingest.EncodeLine(g.Next())
		if err != nil {
			return err
		}
		b = append(b, '\n')
		if _, err := w.Write(b); err != nil {
			return err
		}
	}
	return nil
}

var (
	firstNames = []string{
		"Jamie", "Jordan", "Maryann", "Ying", "Maddie", "Rebecca", "Caroline", "Natasha",
		"Connor", "Raffi", "Mark", "Lisa", "Kiran", "Amber", "Tyler", "Priya",
	}
	lastNames = []string{
		"Korn", "Gruber", "Berry", "Mo", "Franklin", "Sun", "Kelly", "Chen",
		"Liebich", "Savvakis", "Ho", "Patel", "Ortiz", "Novak", "Reyes", "Kim",
	}
)

// GenUsers returns n distinct "First-Last" handles in shuffled order.
func GenUsers(n int, r *rand.Rand) []string {
	out := make([]string, 0, n)
	combos := len(firstNames) * len(lastNames)
	perm := r.Perm(combos)
	for i := 0; i < n; i++ {
		c := perm[i%combos]
		name := firstNames[c/len(lastNames)] + "-" + lastNames[c%len(lastNames)]
		if i >= combos {
			name = fmt.Sprintf("%s-%d", name, i/combos)
		}
		out = append(out, name)
	}
	return out
}
