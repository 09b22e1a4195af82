// Package cache holds rendered images keyed by what produced them, expiring
// entries that go unused.
package cache

import (
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/ahrtr/gocontainer/queue/priorityqueue"
	"github.com/go-co-op/gocron/v2"
	"github.com/tevino/abool/v2"
	"github.com/zeebo/blake3"
)

// Key returns the cache key for a render of an expression at a size and seed.
// The expression should be in canonical form, e.g. from Expr.String, so that
// equivalent sources share entries.
func Key(expr string, w, h int, seed uint64) string {
	hs := blake3.New()
	hs.WriteString(fmt.Sprintf("s:%dx%d,%d\n", w, h, seed))
	hs.WriteString(expr)
	return hex.EncodeToString(hs.Sum(nil))
}

// Cache is an expiring store of encoded images. It is safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
	ttl     time.Duration
	max     int
	now     func() time.Time

	sweeping *abool.AtomicBool
	sched    gocron.Scheduler
}

type entry struct {
	key  string
	data []byte
	used time.Time
}

// New creates a cache. Entries unused for longer than ttl are removed by
// Sweep, and the least recently used entries are evicted to keep at most
// maxEntries. A non-positive ttl or maxEntries disables that limit.
func New(ttl time.Duration, maxEntries int) *Cache {
	return &Cache{
		entries:  make(map[string]*entry),
		ttl:      ttl,
		max:      maxEntries,
		now:      time.Now,
		sweeping: abool.New(),
	}
}

// Get returns the data stored under key and marks it used.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.entries[key]
	if e == nil {
		return nil, false
	}
	e.used = c.now()
	return e.data, true
}

// Put stores data under key, evicting the least recently used entries if the
// cache is over capacity.
func (c *Cache) Put(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = &entry{key: key, data: data, used: c.now()}
	c.trim()
}

// Len returns the number of entries in the cache.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Sweep removes entries idle since before now minus the cache's ttl, then
// evicts least recently used entries above capacity. It returns the number of
// entries removed. If another Sweep is running, Sweep returns 0 immediately.
func (c *Cache) Sweep(now time.Time) int {
	if !c.sweeping.SetToIf(false, true) {
		return 0
	}
	defer c.sweeping.UnSet()
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	if c.ttl > 0 {
		for k, e := range c.entries {
			if now.Sub(e.used) > c.ttl {
				delete(c.entries, k)
				n++
			}
		}
	}
	return n + c.trim()
}

// trim evicts least recently used entries until the cache is within capacity.
// c.mu must be held.
func (c *Cache) trim() int {
	if c.max <= 0 || len(c.entries) <= c.max {
		return 0
	}
	pq := priorityqueue.New().WithComparator(byUse{})
	for _, e := range c.entries {
		pq.Add(e)
	}
	n := 0
	for len(c.entries) > c.max {
		e := pq.Poll().(*entry)
		delete(c.entries, e.key)
		n++
	}
	return n
}

// byUse orders entries from least to most recently used.
type byUse struct{}

func (byUse) Compare(a, b interface{}) (int, error) {
	return a.(*entry).used.Compare(b.(*entry).used), nil
}

// Start schedules Sweep to run every interval until Stop.
func (c *Cache) Start(interval time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sched != nil {
		return fmt.Errorf("cache: sweeper already started")
	}
	s, err := gocron.NewScheduler()
	if err != nil {
		return err
	}
	_, err = s.NewJob(gocron.DurationJob(interval), gocron.NewTask(func() {
		c.Sweep(c.now())
	}))
	if err != nil {
		s.Shutdown()
		return err
	}
	s.Start()
	c.sched = s
	return nil
}

// Stop stops the scheduled sweeper, if any.
func (c *Cache) Stop() error {
	c.mu.Lock()
	s := c.sched
	c.sched = nil
	c.mu.Unlock()
	if s == nil {
		return nil
	}
	return s.Shutdown()
}
