package utils

import (
	"sync"
)

const UnknownID = -1

// StringStore interns strings to dense integer ids. Ids are assigned in insertion order starting at zero.
type StringStore struct {
	mu       sync.RWMutex
	ids      map[string]int
	strs     []string
	isLocked bool
}

func NewStringStore(initial ...string) *StringStore {
	store := &StringStore{ids: make(map[string]int, len(initial))}
	for _, s := range initial {
		store.GetID(s)
	}
	return store
}

// GetID returns the id of s, registering it first unless the store is locked.
// A locked store returns UnknownID for strings it has never seen.
func (store *StringStore) GetID(s string) int {
	store.mu.RLock()
	id, ok := store.ids[s]
	locked := store.isLocked
	store.mu.RUnlock()
	if ok {
		return id
	}
	if locked {
		return UnknownID
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	if id, ok = store.ids[s]; ok {
		return id
	}
	id = len(store.strs)
	store.ids[s] = id
	store.strs = append(store.strs, s)
	return id
}

func (store *StringStore) Lookup(s string) (int, bool) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	id, ok := store.ids[s]
	return id, ok
}

func (store *StringStore) GetString(id int) string {
	store.mu.RLock()
	defer store.mu.RUnlock()
	if id < 0 || id >= len(store.strs) {
		return ""
	}
	return store.strs[id]
}

func (store *StringStore) Strings() []string {
	store.mu.RLock()
	defer store.mu.RUnlock()
	res := make([]string, len(store.strs))
	copy(res, store.strs)
	return res
}

func (store *StringStore) Len() int {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return len(store.strs)
}

// Lock stops the store from growing. Compiled models lock their tag table so the tag set stays closed.
func (store *StringStore) Lock() {
	store.mu.Lock()
	store.isLocked = true
	store.mu.Unlock()
}

func (store *StringStore) IsLocked() bool {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return store.isLocked
}
