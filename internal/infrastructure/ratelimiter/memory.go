package ratelimiter

import (
	"sync"
	"time"
)

// sweepInterval is how often lapsed counters are evicted in bulk. Reads
// treat a lapsed counter as absent regardless, so the sweeper only bounds
// memory growth for sources that stop sending requests.
const sweepInterval = time.Minute

type counter struct {
	value    int
	deadline time.Time // zero means no TTL
}

func (c counter) lapsed(now time.Time) bool {
	return !c.deadline.IsZero() && now.After(c.deadline)
}

// memoryStore is the CounterStore used when no external cache is wired in.
type memoryStore struct {
	mu        sync.RWMutex
	counters  map[string]counter
	done      chan struct{}
	closeOnce sync.Once
}

// NewMemoryStore starts a background sweeper that runs until Close.
func NewMemoryStore() CounterStore {
	s := &memoryStore{
		counters: make(map[string]counter),
		done:     make(chan struct{}),
	}

	go s.sweep()

	return s
}

func (s *memoryStore) Get(key string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.counters[key]
	if !ok || c.lapsed(time.Now()) {
		return 0, ErrCounterNotFound
	}
	return c.value, nil
}

func (s *memoryStore) Set(key string, value int) error {
	return s.SetWithExpiration(key, value, 0)
}

func (s *memoryStore) SetWithExpiration(key string, value int, ttl time.Duration) error {
	c := counter{value: value}
	if ttl > 0 {
		c.deadline = time.Now().Add(ttl)
	}

	s.mu.Lock()
	s.counters[key] = c
	s.mu.Unlock()

	return nil
}

func (s *memoryStore) sweep() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.evictLapsed(time.Now())
		case <-s.done:
			return
		}
	}
}

func (s *memoryStore) evictLapsed(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, c := range s.counters {
		if c.lapsed(now) {
			delete(s.counters, key)
		}
	}
}

func (s *memoryStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
	})
	return nil
}
