// Package dedupe suppresses duplicate submissions while the original is
// still being processed.
package dedupe

import (
	"container/list"
	"context"
	"sync"
)

const defaultMaxSize = 10000

// Deduper maps a submission key to the job that owns it.
type Deduper interface {
	// Claim records owner for key unless the key is already claimed. It
	// returns the current owner and whether this call made the claim.
	Claim(ctx context.Context, key, owner string) (string, bool)
	// Release drops the claim on key so it can be submitted again.
	Release(ctx context.Context, key string)
	// Size returns the number of live claims.
	Size() int
}

type claim struct {
	key   string
	owner string
}

// InMemoryDeduper keeps claims in a map with insertion order for eviction.
type InMemoryDeduper struct {
	mu      sync.Mutex
	claims  map[string]*list.Element
	order   *list.List
	maxSize int
}

// NewInMemoryDeduper creates a deduper.
func NewInMemoryDeduper(opts ...Option) *InMemoryDeduper {
	d := &InMemoryDeduper{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(d)
	}
	d.claims = make(map[string]*list.Element)
	d.order = list.New()
	return d
}

// Claim implements Deduper.
func (d *InMemoryDeduper) Claim(_ context.Context, key, owner string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.claims[key]; ok {
		return el.Value.(*claim).owner, false //nolint:forcetypeassert // only *claim is stored
	}
	if d.maxSize > 0 && len(d.claims) >= d.maxSize {
		d.evictOldest()
	}
	d.claims[key] = d.order.PushBack(&claim{key: key, owner: owner})
	return owner, true
}

// Release implements Deduper.
func (d *InMemoryDeduper) Release(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.claims[key]; ok {
		d.order.Remove(el)
		delete(d.claims, key)
	}
}

// Size implements Deduper.
func (d *InMemoryDeduper) Size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.claims)
}

// evictOldest must be called with d.mu held.
func (d *InMemoryDeduper) evictOldest() {
	front := d.order.Front()
	if front == nil {
		return
	}
	d.order.Remove(front)
	delete(d.claims, front.Value.(*claim).key) //nolint:forcetypeassert // only *claim is stored
}
