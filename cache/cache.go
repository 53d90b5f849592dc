package cache

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/use-agent/scrapedesk/controller"
	"github.com/use-agent/scrapedesk/page"
)

// Session is the state of one open scraping page: its selection and its
// document. A fresh session plays the role of a page reload.
type Session struct {
	ID        string
	Selection *controller.Selection
	Document  *page.Document

	inflight atomic.Int32
}

// Begin marks a submission as started. Every Begin must be paired with End.
func (s *Session) Begin() { s.inflight.Add(1) }

// End marks a submission as finished.
func (s *Session) End() { s.inflight.Add(-1) }

// Pending reports whether a submission is still running.
func (s *Session) Pending() bool { return s.inflight.Load() > 0 }

// entry holds a session with its last access time.
type entry struct {
	session  *Session
	lastSeen time.Time
}

// Cache is an in-memory session store. It is safe for concurrent use.
type Cache struct {
	mu         sync.Mutex
	store      map[string]*entry
	maxEntries int
	ttl        time.Duration
	onResize   func(n int)
	done       chan struct{}
	closeOnce  sync.Once
}

// Option configures a Cache.
type Option func(*Cache)

// WithSizeObserver registers fn to be called with the number of live
// sessions after every insert or removal.
func WithSizeObserver(fn func(n int)) Option {
	return func(c *Cache) { c.onResize = fn }
}

// New creates a Cache holding at most maxEntries sessions. A background
// goroutine evicts sessions idle for longer than ttl; it stops on Close.
func New(maxEntries int, ttl time.Duration, opts ...Option) *Cache {
	if maxEntries <= 0 {
		maxEntries = 1
	}
	c := &Cache{
		store:      make(map[string]*entry),
		maxEntries: maxEntries,
		ttl:        ttl,
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	if ttl > 0 {
		go c.cleanupLoop()
	}
	return c
}

// Get returns the session with the given id and refreshes its idle timer.
func (c *Cache) Get(id string) (*Session, bool) {
	c.mu.Lock()
	e, ok := c.store[id]
	if !ok {
		c.mu.Unlock()
		return nil, false
	}
	if c.ttl > 0 && time.Since(e.lastSeen) > c.ttl {
		delete(c.store, id)
		n := len(c.store)
		c.mu.Unlock()
		c.resized(n)
		return nil, false
	}
	e.lastSeen = time.Now()
	c.mu.Unlock()
	return e.session, true
}

// Create starts a new session with an empty selection and a fresh page.
// If the cache is at capacity, a random session is evicted to make room.
func (c *Cache) Create() *Session {
	s := &Session{
		ID:        uuid.NewString(),
		Selection: &controller.Selection{},
		Document:  page.NewScrapePage(),
	}

	c.mu.Lock()
	// Evict one random entry if at capacity (map iteration is random in Go).
	if len(c.store) >= c.maxEntries {
		for k := range c.store {
			delete(c.store, k)
			break
		}
	}

	c.store[s.ID] = &entry{session: s, lastSeen: time.Now()}
	n := len(c.store)
	c.mu.Unlock()

	c.resized(n)
	return s
}

// GetOrCreate returns the session for id, or a new one if id is unknown.
func (c *Cache) GetOrCreate(id string) (*Session, bool) {
	if id != "" {
		if s, ok := c.Get(id); ok {
			return s, false
		}
	}
	return c.Create(), true
}

// Len returns the number of live sessions.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.store)
}

// Close stops the cleanup goroutine.
func (c *Cache) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// evictIdle removes sessions not seen since cutoff.
func (c *Cache) evictIdle(cutoff time.Time) int {
	c.mu.Lock()
	n := 0
	for k, e := range c.store {
		if e.lastSeen.Before(cutoff) {
			delete(c.store, k)
			n++
		}
	}
	live := len(c.store)
	c.mu.Unlock()

	if n > 0 {
		c.resized(live)
	}
	return n
}

// resized is called without c.mu held.
func (c *Cache) resized(n int) {
	if c.onResize != nil {
		c.onResize(n)
	}
}

// cleanupLoop evicts idle sessions every ttl/4, at most every 5 minutes.
func (c *Cache) cleanupLoop() {
	interval := c.ttl / 4
	if interval > 5*time.Minute {
		interval = 5 * time.Minute
	}
	if interval < time.Second {
		interval = time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.evictIdle(time.Now().Add(-c.ttl))
		}
	}
}
