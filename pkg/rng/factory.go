// Package rng hands out named random streams derived from one base seed, so a
// synthetic payment feed can be replayed exactly from its seed.
package rng

import (
	"encoding/binary"
	"hash/fnv"
	"math/rand"
	"sync"
	"time"
)

// Mode selects where the base seed comes from.
type Mode int

const (
	Deterministic Mode = iota // the caller's seed
	Real                      // the clock, read once in New
)

func (m Mode) String() string {
	if m == Real {
		return "real"
	}
	return "deterministic"
}

// Factory is safe for concurrent use; the streams it returns are not.
type Factory struct {
	seed int64
	mode Mode

	mu      sync.Mutex
	streams map[string]*rand.Rand
}

func New(mode Mode, seed int64) *Factory {
	if mode == Real {
		seed = time.Now().UnixNano()
	}
	return &Factory{seed: seed, mode: mode, streams: map[string]*rand.Rand{}}
}

// Seed reports the base seed. In Real mode it is the value to pass back with
// Deterministic to replay a feed.
func (f *Factory) Seed() int64 { return f.seed }

func (f *Factory) Mode() Mode { return f.mode }

// R returns the stream for name. Two factories with the same seed give equal
// streams per name; streams with different names are independent, so adding a
// draw to one decision leaves the others unchanged.
func (f *Factory) R(name string) *rand.Rand {
	f.mu.Lock()
	defer f.mu.Unlock()

	r, ok := f.streams[name]
	if !ok {
		r = rand.New(rand.NewSource(streamSeed(f.seed, name)))
		f.streams[name] = r
	}
	return r
}

func streamSeed(base int64, name string) int64 {
	h := fnv.New64a()
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(base))
	_, _ = h.Write(b[:])
	_, _ = h.Write([]byte(name))
	return int64(h.Sum64())
}
