package out

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/chenzhangda16/paygraph/internal/paygraph/retry"
)

// WriterSink writes one median per line, nothing else. Lines are separated,
// not terminated: the output has no trailing newline.
type WriterSink struct {
	bw      *bufio.Writer
	closer  io.Closer
	started bool
}

func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{bw: bufio.NewWriterSize(w, 64<<10)}
}

// NewFileSink truncates path, creating its directory if missing.
func NewFileSink(path string) (*WriterSink, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("file sink: mkdir %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("file sink: %w", err)
	}
	s := NewWriterSink(f)
	s.closer = f
	return s, nil
}

// Local write failures do not get better with retries.
func (s *WriterSink) Emit(_ context.Context, typ string, v any) error {
	rec, ok := v.(MedianRecord)
	if typ != TypeMedian || !ok {
		return retry.Permanent(fmt.Errorf("file sink: unsupported record %q (%T)", typ, v))
	}
	if s.started {
		if err := s.bw.WriteByte('\n'); err != nil {
			return retry.Permanent(err)
		}
	}
	if _, err := s.bw.WriteString(rec.Median); err != nil {
		return retry.Permanent(err)
	}
	s.started = true
	return nil
}

func (s *WriterSink) Flush() error { return s.bw.Flush() }

func (s *WriterSink) Close() error {
	err := s.bw.Flush()
	if s.closer != nil {
		if cerr := s.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
