package calculation

import (
	"context"
	"encoding/binary"
	"math"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/rgehrsitz/glidepath/internal/distribution"
	"github.com/rgehrsitz/glidepath/internal/grid"
	"github.com/rgehrsitz/glidepath/internal/transition"
	"golang.org/x/sync/singleflight"
)

// DefaultCacheSize is how many transition tensors a TensorCache keeps.
const DefaultCacheSize = 8

// TensorCache keeps recently built transition tensors keyed by grid, strategies
// and cashflows. Concurrent requests for the same inputs share one build. Tensors
// are read-only once built, so they are handed out without copying.
//
// Entries are indexed by an xxhash of the inputs and hold the full identity, which
// is compared on every hit so a hash collision is a miss rather than a wrong tensor.
type TensorCache struct {
	size  int
	group singleflight.Group

	mu      sync.Mutex
	entries map[uint64]cacheEntry
	order   []uint64
}

type cacheEntry struct {
	identity string
	tensor   *transition.Tensor
}

// NewTensorCache creates a cache holding at most size tensors; size <= 0 disables storage.
func NewTensorCache(size int) *TensorCache {
	return &TensorCache{size: size, entries: make(map[uint64]cacheEntry)}
}

// Get returns the tensor for the inputs, building it if needed. The bool reports a cache hit.
func (c *TensorCache) Get(ctx context.Context, g grid.Grid, dists []distribution.Distribution, cashflows []float64) (*transition.Tensor, bool, error) {
	identity := tensorIdentity(g, dists, cashflows)
	key := xxhash.Sum64String(identity)

	if t, ok := c.lookup(key, identity); ok {
		return t, true, nil
	}

	ch := c.group.DoChan(identity, func() (interface{}, error) {
		t, err := transition.Build(g, dists, cashflows)
		if err != nil {
			return nil, err
		}
		c.store(key, identity, t)
		return t, nil
	})
	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, false, res.Err
		}
		return res.Val.(*transition.Tensor), false, nil
	}
}

// Len returns the number of cached tensors.
func (c *TensorCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *TensorCache) lookup(key uint64, identity string) (*transition.Tensor, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || e.identity != identity {
		return nil, false
	}
	return e.tensor, true
}

func (c *TensorCache) store(key uint64, identity string, t *transition.Tensor) {
	if c.size <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; ok {
		// Same slot: either the same inputs or a colliding one; the newest wins.
		c.entries[key] = cacheEntry{identity: identity, tensor: t}
		return
	}
	for len(c.order) >= c.size {
		delete(c.entries, c.order[0])
		c.order = c.order[1:]
	}
	c.entries[key] = cacheEntry{identity: identity, tensor: t}
	c.order = append(c.order, key)
}

// tensorIdentity serializes everything a tensor depends on: the float bits of the
// grid and cashflows, length-prefixed, and each distribution's description.
func tensorIdentity(g grid.Grid, dists []distribution.Distribution, cashflows []float64) string {
	var b strings.Builder
	var buf [8]byte
	writeFloats := func(xs []float64) {
		binary.LittleEndian.PutUint64(buf[:], uint64(len(xs)))
		b.Write(buf[:])
		for _, x := range xs {
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(x))
			b.Write(buf[:])
		}
	}
	writeFloats(g.Boundaries)
	writeFloats(g.Values)
	writeFloats(cashflows)
	for _, d := range dists {
		b.WriteString(d.String())
		b.WriteByte(';')
	}
	return b.String()
}
