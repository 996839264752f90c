package ingest

import (
	"bufio"
	"context"
	"io"
)

const (
	readBufSize = 64 << 10
	maxLineSize = 1 << 20
)

// ScanLines feeds every line of r to fn, in order, until r is exhausted, fn
// fails or ctx is canceled. The slice passed to fn is only valid during the call.
func ScanLines(ctx context.Context, r io.Reader, fn func(line []byte) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, readBufSize), maxLineSize)
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(sc.Bytes()); err != nil {
			return err
		}
	}
	return sc.Err()
}
