package negotiation

import "sync"

// LockRegistry hands out one mutex per request id, making each session a
// single-writer resource while leaving independent sessions free to
// proceed concurrently.
type LockRegistry struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewLockRegistry() *LockRegistry {
	return &LockRegistry{locks: make(map[string]*sync.Mutex)}
}

// Acquire blocks until exclusive access to the session is held and
// returns the release function. Callers must release on every exit path.
func (r *LockRegistry) Acquire(requestId string) func() {
	r.mu.Lock()
	lock, ok := r.locks[requestId]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[requestId] = lock
	}
	r.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// Forget drops the lock entry for a finished session. Safe to call while
// no one holds the lock.
func (r *LockRegistry) Forget(requestId string) {
	r.mu.Lock()
	delete(r.locks, requestId)
	r.mu.Unlock()
}
