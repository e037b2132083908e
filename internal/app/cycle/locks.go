package cycle

import "sync"

// LockSet serializes cycles per world inside one process. The optimistic
// version check on the world aggregate still backs this up across processes;
// the lock only keeps co-located cycles from burning conflict retries.
type LockSet struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewLockSet() *LockSet {
	return &LockSet{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the world's mutex and returns its release func.
func (ls *LockSet) Lock(worldID string) func() {
	ls.mu.Lock()
	m, ok := ls.locks[worldID]
	if !ok {
		m = &sync.Mutex{}
		ls.locks[worldID] = m
	}
	ls.mu.Unlock()

	m.Lock()
	return m.Unlock
}
