package utils

import (
	"fmt"
	"sync"
)

// KeyLock serializes work per (group, user) key. Reward application and
// moderation transitions on the same member record are read-modify-write;
// distinct keys stay fully parallel. Entries are reference counted and freed
// once the last holder unlocks, so the map only holds keys currently in use.
type KeyLock struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func NewKeyLock() *KeyLock {
	return &KeyLock{locks: make(map[string]*lockEntry)}
}

// MemberKey builds the lock key for one member record.
func MemberKey(groupID, userID int64) string {
	return fmt.Sprintf("%d:%d", groupID, userID)
}

// Lock acquires the mutex for key, creating it on first use. Unlock with the
// returned function.
func (k *KeyLock) Lock(key string) func() {
	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		e = &lockEntry{}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()

		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
