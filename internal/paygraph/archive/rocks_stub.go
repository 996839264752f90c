//go:build !rocksdb

package archive

import (
	"context"

	"github.com/chenzhangda16/paygraph/internal/paygraph/out"
)

const Available = false

type Rocks struct{}

func Open(string) (*Rocks, error) { return nil, ErrUnavailable }

func (*Rocks) Close() error                                    { return nil }
func (*Rocks) Put(out.MedianRecord) error                      { return ErrUnavailable }
func (*Rocks) Emit(context.Context, string, any) error         { return ErrUnavailable }
func (*Rocks) Scan(string, func(out.MedianRecord) error) error { return ErrUnavailable }
