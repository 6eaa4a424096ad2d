// Package lock provides per-namespace locking. Every operation that touches
// a namespace's registries, records, or matches runs under that namespace's
// lock, so two operations on the same game's entities are never interleaved.
package lock

import "sync"

// nsMutex wraps a mutex stored per namespace.
type nsMutex struct {
	mu sync.Mutex
}

// NamespaceLock serializes engine operations per game namespace.
type NamespaceLock struct {
	locks sync.Map // map[string]*nsMutex
	pool  sync.Pool
}

// NewNamespaceLock creates a new NamespaceLock instance.
func NewNamespaceLock() *NamespaceLock {
	return &NamespaceLock{
		pool: sync.Pool{
			New: func() any {
				return &nsMutex{}
			},
		},
	}
}

// getLock retrieves or creates a mutex for the given namespace.
func (nl *NamespaceLock) getLock(namespace string) *nsMutex {
	if v, ok := nl.locks.Load(namespace); ok {
		return v.(*nsMutex)
	}

	newLock := nl.pool.Get().(*nsMutex)
	actual, loaded := nl.locks.LoadOrStore(namespace, newLock)
	if loaded {
		// Another goroutine created the lock first, return ours to pool
		nl.pool.Put(newLock)
	}
	return actual.(*nsMutex)
}

// Lock acquires the lock for a namespace.
func (nl *NamespaceLock) Lock(namespace string) {
	nl.getLock(namespace).mu.Lock()
}

// Unlock releases the lock for a namespace.
func (nl *NamespaceLock) Unlock(namespace string) {
	if v, ok := nl.locks.Load(namespace); ok {
		v.(*nsMutex).mu.Unlock()
	}
}

// TryLock attempts to acquire the lock without blocking.
// Returns true if the lock was acquired.
func (nl *NamespaceLock) TryLock(namespace string) bool {
	return nl.getLock(namespace).mu.TryLock()
}

// WithLock executes fn while holding the namespace's lock.
func (nl *NamespaceLock) WithLock(namespace string, fn func() error) error {
	nl.Lock(namespace)
	defer nl.Unlock(namespace)
	return fn()
}
