// ABOUTME: Thread-safe, size-limited counter of recent login failures per key.
// ABOUTME: Locks a key out once it reaches the failure limit inside the window.

package throttle

import (
	"container/list"
	"sync"
	"time"
)

// DefaultMaxKeys bounds how many distinct keys are tracked at once.
const DefaultMaxKeys = 10000

// entry tracks failures for one key since the first failure in the current window.
type entry struct {
	failures int
	first    time.Time
	element  *list.Element
}

// Limiter counts failures per key. A key is blocked once it has maxFailures
// failures within window of its first failure; the window then expires and the
// count starts over. Uses a doubly-linked list for O(1) eviction of the
// least recently failed key when the limiter is full.
type Limiter struct {
	mu          sync.Mutex
	entries     map[string]*entry
	order       *list.List // keys, least recently failed at front
	maxFailures int
	window      time.Duration
	maxKeys     int
	now         func() time.Time
	done        chan struct{}
	closed      bool
}

// New creates a limiter. maxFailures <= 0 disables blocking entirely.
// A background goroutine periodically drops expired entries.
func New(maxFailures int, window time.Duration, maxKeys int) *Limiter {
	if maxKeys <= 0 {
		maxKeys = DefaultMaxKeys
	}
	l := &Limiter{
		entries:     make(map[string]*entry),
		order:       list.New(),
		maxFailures: maxFailures,
		window:      window,
		maxKeys:     maxKeys,
		now:         time.Now,
		done:        make(chan struct{}),
	}
	go l.cleanup()
	return l
}

// Blocked reports whether key has reached the failure limit in the current window.
func (l *Limiter) Blocked(key string) bool {
	if l.maxFailures <= 0 {
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok || l.expired(e) {
		return false
	}
	return e.failures >= l.maxFailures
}

// RecordFailure counts a failure for key and reports whether key is now blocked.
func (l *Limiter) RecordFailure(key string) bool {
	if l.maxFailures <= 0 {
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if ok && !l.expired(e) {
		e.failures++
		l.order.MoveToBack(e.element)
		return e.failures >= l.maxFailures
	}
	if ok {
		l.removeLocked(key, e)
	}

	if len(l.entries) >= l.maxKeys {
		l.evictOldest()
	}

	e = &entry{
		failures: 1,
		first:    l.now(),
		element:  l.order.PushBack(key),
	}
	l.entries[key] = e
	return e.failures >= l.maxFailures
}

// Reset forgets all failures for key, typically after a successful login.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if e, ok := l.entries[key]; ok {
		l.removeLocked(key, e)
	}
}

// Len returns the number of tracked keys.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// expired must be called with mu held.
func (l *Limiter) expired(e *entry) bool {
	return l.now().Sub(e.first) >= l.window
}

// removeLocked must be called with mu held.
func (l *Limiter) removeLocked(key string, e *entry) {
	l.order.Remove(e.element)
	delete(l.entries, key)
}

// evictOldest removes the least recently failed key.
// Must be called with mu held.
func (l *Limiter) evictOldest() {
	front := l.order.Front()
	if front == nil {
		return
	}

	key, _ := front.Value.(string)
	l.order.Remove(front)
	delete(l.entries, key)
}

// cleanup runs in a background goroutine, periodically removing expired entries.
func (l *Limiter) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.runCleanup()
		case <-l.done:
			return
		}
	}
}

// runCleanup removes all expired entries.
func (l *Limiter) runCleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for key, e := range l.entries {
		if l.expired(e) {
			l.removeLocked(key, e)
		}
	}
}

// Close stops the background cleanup goroutine. It is safe to call multiple times.
func (l *Limiter) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.closed {
		close(l.done)
		l.closed = true
	}
}
