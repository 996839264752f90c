package out

import (
	"context"
	"sync"

	"go.uber.org/multierr"
)

type Sink interface {
	Emit(ctx context.Context, typ string, v any) error
	Close() error
}

// Fanout emits to every sink in order and stops at the first error. Wrap it
// with RetryEach before retrying, or earlier members see the record again.
type Fanout []Sink

func (f Fanout) Emit(ctx context.Context, typ string, v any) error {
	for _, s := range f {
		if err := s.Emit(ctx, typ, v); err != nil {
			return err
		}
	}
	return nil
}

// Close closes all sinks even if some of them fail.
func (f Fanout) Close() error {
	var err error
	for _, s := range f {
		err = multierr.Append(err, s.Close())
	}
	return err
}

type lockedSink struct {
	mu sync.Mutex
	s  Sink
}

// Synchronized serializes Emit and Close on s, for sinks shared by several
// stream goroutines.
func Synchronized(s Sink) Sink { return &lockedSink{s: s} }

func (l *lockedSink) Emit(ctx context.Context, typ string, v any) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.s.Emit(ctx, typ, v)
}

func (l *lockedSink) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.s.Close()
}

type nopCloser struct{ Sink }

func (nopCloser) Close() error { return nil }

// NopCloser lets a stream emit to a sink it does not own.
func NopCloser(s Sink) Sink { return nopCloser{s} }
