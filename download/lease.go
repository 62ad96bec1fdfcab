package download

import "sync"

// Lease scopes the resources created by one operation. Close(false)
// releases all of them; Close(true) hands them over to the store, where
// they live until downloaded, released or expired.
type Lease struct {
	store *Store

	mu     sync.Mutex
	ids    []string
	closed bool
}

// Lease starts a new scope on s.
func (s *Store) Lease() *Lease {
	return &Lease{store: s}
}

// Put stores res and ties it to the lease.
func (l *Lease) Put(res *Resource) string {
	id := l.store.Put(res)

	l.mu.Lock()
	l.ids = append(l.ids, id)
	l.mu.Unlock()
	return id
}

// IDs returns the ids created so far.
func (l *Lease) IDs() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.ids...)
}

// Close ends the lease. Calling it more than once has no effect.
func (l *Lease) Close(keep bool) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	ids := l.ids
	l.ids = nil
	l.mu.Unlock()

	if keep {
		return
	}
	for _, id := range ids {
		l.store.Release(id)
	}
}
