package out

import (
	"context"

	"github.com/chenzhangda16/paygraph/internal/paygraph/retry"
)

type retryingSink struct {
	s Sink
	p retry.Policy
}

// RetryEach retries every member of a Fanout on its own under p, so a flaky
// sink never makes the sinks before it see the same record twice. Any other
// sink is retried as a whole.
func RetryEach(s Sink, p retry.Policy) Sink {
	if f, ok := s.(Fanout); ok {
		wrapped := make(Fanout, len(f))
		for i, m := range f {
			wrapped[i] = RetryEach(m, p)
		}
		return wrapped
	}
	return &retryingSink{s: s, p: p}
}

func (r *retryingSink) Emit(ctx context.Context, typ string, v any) error {
	return retry.Do(ctx, r.p, func(ctx context.Context) error {
		return r.s.Emit(ctx, typ, v)
	})
}

func (r *retryingSink) Close() error { return r.s.Close() }
