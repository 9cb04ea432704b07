package analysis

import "sync"

// propertyLocks serializes writers per property so concurrent PUTs are
// applied one after another in arrival order.
type propertyLocks struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newPropertyLocks() *propertyLocks {
	return &propertyLocks{locks: make(map[string]*lockEntry)}
}

// lock acquires the lock of a property and returns its release function.
func (p *propertyLocks) lock(propertyID string) func() {
	p.mu.Lock()
	entry, ok := p.locks[propertyID]
	if !ok {
		entry = &lockEntry{}
		p.locks[propertyID] = entry
	}
	entry.refs++
	p.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		p.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(p.locks, propertyID)
		}
		p.mu.Unlock()
	}
}
