//go:build rocksdb

package archive

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/tecbot/gorocksdb"

	"github.com/chenzhangda16/paygraph/internal/paygraph/out"
	"github.com/chenzhangda16/paygraph/internal/paygraph/retry"
)

type Rocks struct {
	db *gorocksdb.DB
	ro *gorocksdb.ReadOptions
	wo *gorocksdb.WriteOptions
}

const Available = true

func Open(path string) (*Rocks, error) {
	opts := gorocksdb.NewDefaultOptions()
	opts.SetCreateIfMissing(true)
	opts.IncreaseParallelism(2)

	db, err := gorocksdb.OpenDb(opts, path)
	if err != nil {
		return nil, fmt.Errorf("archive: open %s: %w", path, err)
	}
	return &Rocks{
		db: db,
		ro: gorocksdb.NewDefaultReadOptions(),
		wo: gorocksdb.NewDefaultWriteOptions(),
	}, nil
}

func (r *Rocks) Close() error {
	if r.ro != nil {
		r.ro.Destroy()
	}
	if r.wo != nil {
		r.wo.Destroy()
	}
	if r.db != nil {
		r.db.Close()
	}
	return nil
}

func (r *Rocks) Put(rec out.MedianRecord) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return r.db.Put(r.wo, keyMedian(rec.Stream, rec.Seq), b)
}

func (r *Rocks) Emit(_ context.Context, typ string, v any) error {
	rec, ok := v.(out.MedianRecord)
	if typ != out.TypeMedian || !ok {
		return retry.Permanent(fmt.Errorf("archive: unsupported record %q (%T)", typ, v))
	}
	return r.Put(rec)
}

// Scan calls fn for each archived record of stream in seq order, or for all
// streams when stream is empty. Returning an error from fn stops the scan.
func (r *Rocks) Scan(stream string, fn func(out.MedianRecord) error) error {
	prefix := []byte(prefixMedian)
	if stream != "" {
		prefix = keyStreamPrefix(stream)
	}

	it := r.db.NewIterator(r.ro)
	defer it.Close()

	for it.Seek(prefix); it.Valid(); it.Next() {
		k := it.Key()
		if !bytes.HasPrefix(k.Data(), prefix) {
			k.Free()
			break
		}
		_, _, kerr := parseKeyMedian(k.Data())
		k.Free()

		v := it.Value()
		var rec out.MedianRecord
		err := json.Unmarshal(v.Data(), &rec)
		v.Free()
		if kerr != nil {
			return kerr
		}
		if err != nil {
			return fmt.Errorf("archive: decode record: %w", err)
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	return it.Err()
}
