package cache

import (
	"testing"
	"time"
)

// clock is a manually advanced time source.
type clock struct {
	t time.Time
}

func (c *clock) now() time.Time { return c.t }

func (c *clock) tick(d time.Duration) { c.t = c.t.Add(d) }

func newTest(ttl time.Duration, max int) (*Cache, *clock) {
	clk := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := New(ttl, max)
	c.now = clk.now
	return c, clk
}

func TestKey(t *testing.T) {
	a := Key("(x + y)", 64, 64, 1)
	if len(a) != 64 {
		t.Errorf("key %q should be 64 hex digits", a)
	}
	if b := Key("(x + y)", 64, 64, 1); a != b {
		t.Errorf("same inputs gave different keys %q and %q", a, b)
	}
	others := []string{
		Key("(x - y)", 64, 64, 1),
		Key("(x + y)", 64, 32, 1),
		Key("(x + y)", 32, 64, 1),
		Key("(x + y)", 64, 64, 2),
		Key("(x + y)", 646, 4, 1),
	}
	for i, b := range others {
		if a == b {
			t.Errorf("case %d collides with base key", i)
		}
	}
}

func TestGetPut(t *testing.T) {
	c, _ := newTest(time.Minute, 0)
	if _, ok := c.Get("a"); ok {
		t.Errorf("empty cache has a")
	}
	c.Put("a", []byte("alpha"))
	if v, ok := c.Get("a"); !ok || string(v) != "alpha" {
		t.Errorf("wrong value %q (%t)", v, ok)
	}
	c.Put("a", []byte("again"))
	if v, _ := c.Get("a"); string(v) != "again" {
		t.Errorf("replaced value is %q", v)
	}
	if c.Len() != 1 {
		t.Errorf("want 1 entry, have %d", c.Len())
	}
}

func TestSweepTTL(t *testing.T) {
	c, clk := newTest(time.Minute, 0)
	c.Put("old", nil)
	clk.tick(45 * time.Second)
	c.Put("new", nil)
	clk.tick(30 * time.Second)
	if n := c.Sweep(clk.now()); n != 1 {
		t.Errorf("want 1 removed, got %d", n)
	}
	if _, ok := c.Get("old"); ok {
		t.Errorf("old survived sweep")
	}
	if _, ok := c.Get("new"); !ok {
		t.Errorf("new was swept")
	}
	// Get refreshes use.
	clk.tick(50 * time.Second)
	if n := c.Sweep(clk.now()); n != 0 {
		t.Errorf("recently used entry swept")
	}
}

func TestLRU(t *testing.T) {
	c, clk := newTest(0, 2)
	c.Put("a", nil)
	clk.tick(time.Second)
	c.Put("b", nil)
	clk.tick(time.Second)
	c.Get("a")
	clk.tick(time.Second)
	c.Put("c", nil)
	if c.Len() != 2 {
		t.Fatalf("want 2 entries, have %d", c.Len())
	}
	if _, ok := c.Get("b"); ok {
		t.Errorf("least recently used entry survived")
	}
	for _, k := range []string{"a", "c"} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("%s was evicted", k)
		}
	}
	// No ttl means nothing expires.
	clk.tick(1000 * time.Hour)
	if n := c.Sweep(clk.now()); n != 0 {
		t.Errorf("swept %d entries with no ttl", n)
	}
}

func TestSweepGuard(t *testing.T) {
	c, clk := newTest(time.Second, 0)
	c.Put("a", nil)
	clk.tick(time.Minute)
	c.sweeping.Set()
	if n := c.Sweep(clk.now()); n != 0 {
		t.Errorf("concurrent sweep removed %d", n)
	}
	c.sweeping.UnSet()
	if n := c.Sweep(clk.now()); n != 1 {
		t.Errorf("sweep removed %d, want 1", n)
	}
}

func TestStartStop(t *testing.T) {
	c := New(time.Millisecond, 0)
	c.Put("a", nil)
	if err := c.Start(10 * time.Millisecond); err != nil {
		t.Fatal(err)
	}
	if err := c.Start(time.Second); err == nil {
		t.Errorf("second Start succeeded")
	}
	deadline := time.Now().Add(5 * time.Second)
	for c.Len() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if err := c.Stop(); err != nil {
		t.Error(err)
	}
	if c.Len() != 0 {
		t.Errorf("scheduled sweep never removed the entry")
	}
	if err := c.Stop(); err != nil {
		t.Errorf("second Stop: %v", err)
	}
}
