package download

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultTTL bounds how long an unfetched resource is kept.
	DefaultTTL = 10 * time.Minute

	// DefaultSweepInterval is how often Run looks for expired resources.
	DefaultSweepInterval = 30 * time.Second
)

type entry struct {
	res     *Resource
	expires time.Time
}

// Store keeps resources in memory behind random ids. It is safe for
// concurrent use.
type Store struct {
	mu     sync.Mutex
	items  map[string]*entry
	ttl    time.Duration
	now    func() time.Time
	logger logrus.FieldLogger
}

// NewStore creates a store whose resources expire after ttl.
func NewStore(ttl time.Duration, logger logrus.FieldLogger) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Store{
		items:  make(map[string]*entry),
		ttl:    ttl,
		now:    time.Now,
		logger: logger,
	}
}

// Put registers res and returns its id. The id is also set on res.
func (s *Store) Put(res *Resource) string {
	id := uuid.NewString()
	res.ID = id

	s.mu.Lock()
	s.items[id] = &entry{res: res, expires: s.now().Add(s.ttl)}
	s.mu.Unlock()

	s.logger.WithFields(logrus.Fields{
		"resource_id": id,
		"filename":    res.Filename,
		"size":        res.Size(),
	}).Debug("download resource created")
	return id
}

// Get returns the resource for id unless it was released or has expired.
func (s *Store) Get(id string) (*Resource, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.items[id]
	if !ok {
		return nil, false
	}
	if s.now().After(e.expires) {
		delete(s.items, id)
		return nil, false
	}
	return e.res, true
}

// Release drops the resource. It reports whether id was present.
func (s *Store) Release(id string) bool {
	s.mu.Lock()
	_, ok := s.items[id]
	delete(s.items, id)
	s.mu.Unlock()

	if ok {
		s.logger.WithField("resource_id", id).Debug("download resource released")
	}
	return ok
}

// ReleaseAfter releases id once delay has passed, giving an in-flight
// transfer time to start.
func (s *Store) ReleaseAfter(id string, delay time.Duration) {
	if delay <= 0 {
		s.Release(id)
		return
	}
	time.AfterFunc(delay, func() { s.Release(id) })
}

// Len returns the number of live resources.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Sweep releases expired resources and returns how many were dropped.
func (s *Store) Sweep() int {
	now := s.now()

	s.mu.Lock()
	var expired []string
	for id, e := range s.items {
		if now.After(e.expires) {
			expired = append(expired, id)
			delete(s.items, id)
		}
	}
	s.mu.Unlock()

	if len(expired) > 0 {
		s.logger.WithField("count", len(expired)).Info("expired download resources released")
	}
	return len(expired)
}

// Run sweeps every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}
