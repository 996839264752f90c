// Package archive keeps every emitted median record in RocksDB so a run can be
// inspected after the fact with "paygraph dump".
//
// RocksDB needs cgo and librocksdb, so the store is only compiled with the
// "rocksdb" build tag. Without it Open returns ErrUnavailable.
package archive

import "errors"

var ErrUnavailable = errors.New("archive: built without the rocksdb tag")
