// ABOUTME: Tests for the login failure limiter.
// ABOUTME: Validates blocking, window expiry, reset, eviction, cleanup, and concurrency safety.

package throttle

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestLimiter(t *testing.T, maxFailures int, window time.Duration, maxKeys int) (*Limiter, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := New(maxFailures, window, maxKeys)
	l.now = clock.Now
	t.Cleanup(l.Close)
	return l, clock
}

func TestLimiter_BlocksAtLimit(t *testing.T) {
	l, _ := newTestLimiter(t, 3, time.Minute, 100)

	assert.False(t, l.Blocked("a@example.com"))
	assert.False(t, l.RecordFailure("a@example.com"))
	assert.False(t, l.RecordFailure("a@example.com"))
	assert.True(t, l.RecordFailure("a@example.com"))
	assert.True(t, l.Blocked("a@example.com"))

	// Other keys are unaffected
	assert.False(t, l.Blocked("b@example.com"))
}

func TestLimiter_WindowExpires(t *testing.T) {
	l, clock := newTestLimiter(t, 2, time.Minute, 100)

	l.RecordFailure("key")
	l.RecordFailure("key")
	assert.True(t, l.Blocked("key"))

	clock.Advance(time.Minute)
	assert.False(t, l.Blocked("key"))

	// A failure after expiry starts a fresh window
	assert.False(t, l.RecordFailure("key"))
}

func TestLimiter_Reset(t *testing.T) {
	l, _ := newTestLimiter(t, 2, time.Minute, 100)

	l.RecordFailure("key")
	l.RecordFailure("key")
	assert.True(t, l.Blocked("key"))

	l.Reset("key")
	assert.False(t, l.Blocked("key"))
	assert.Equal(t, 0, l.Len())

	// Resetting an unknown key is a no-op
	l.Reset("never-seen")
}

func TestLimiter_Disabled(t *testing.T) {
	l, _ := newTestLimiter(t, 0, time.Minute, 100)

	for range 10 {
		assert.False(t, l.RecordFailure("key"))
	}
	assert.False(t, l.Blocked("key"))
	assert.Equal(t, 0, l.Len())
}

func TestLimiter_EvictsLeastRecentlyFailed(t *testing.T) {
	l, _ := newTestLimiter(t, 5, time.Minute, 2)

	l.RecordFailure("first")
	l.RecordFailure("second")
	l.RecordFailure("first") // first is now most recent
	l.RecordFailure("third") // evicts second

	assert.Equal(t, 2, l.Len())
	l.mu.Lock()
	_, hasFirst := l.entries["first"]
	_, hasSecond := l.entries["second"]
	l.mu.Unlock()
	assert.True(t, hasFirst)
	assert.False(t, hasSecond)
}

func TestLimiter_Cleanup(t *testing.T) {
	l, clock := newTestLimiter(t, 5, time.Minute, 100)

	l.RecordFailure("old")
	clock.Advance(30 * time.Second)
	l.RecordFailure("new")
	clock.Advance(45 * time.Second)

	l.runCleanup()
	assert.Equal(t, 1, l.Len())
}

func TestLimiter_DefaultMaxKeys(t *testing.T) {
	l := New(3, time.Minute, 0)
	defer l.Close()
	assert.Equal(t, DefaultMaxKeys, l.maxKeys)
}

func TestLimiter_Concurrent(t *testing.T) {
	l, _ := newTestLimiter(t, 1000, time.Minute, 100)

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			key := fmt.Sprintf("key-%d", i%5)
			l.RecordFailure(key)
			l.Blocked(key)
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, l.Len())
}

func TestLimiter_Close(t *testing.T) {
	l := New(3, time.Minute, 10)
	l.Close()
	l.Close()
}
