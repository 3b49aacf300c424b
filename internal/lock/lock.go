// Package lock provides per-key mutual exclusion for room mutations.
package lock

import (
	"sync"

	"github.com/google/uuid"
)

type entry struct {
	mu   sync.Mutex
	refs int
}

// Keyed hands out one mutex per room ID. Entries are dropped once the
// last holder releases, so closed rooms do not accumulate.
type Keyed struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*entry
}

func NewKeyed() *Keyed {
	return &Keyed{
		entries: make(map[uuid.UUID]*entry),
	}
}

func (k *Keyed) Lock(id uuid.UUID) {
	k.mu.Lock()
	e, ok := k.entries[id]
	if !ok {
		e = &entry{}
		k.entries[id] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
}

func (k *Keyed) Unlock(id uuid.UUID) {
	k.mu.Lock()
	e, ok := k.entries[id]
	if ok {
		e.refs--
		if e.refs == 0 {
			delete(k.entries, id)
		}
	}
	k.mu.Unlock()

	if ok {
		e.mu.Unlock()
	}
}
