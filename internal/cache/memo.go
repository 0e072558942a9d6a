package cache

import (
	lru "github.com/hashicorp/golang-lru"
)

// Memo remembers the results of a pure string predicate for the most
// recently seen keys. It must only wrap functions whose answer never
// changes for a given key.
type Memo struct {
	cache *lru.Cache
	fn    func(string) bool
}

// NewMemo wraps fn with an LRU of size entries.
func NewMemo(size int, fn func(string) bool) (*Memo, error) {
	c, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &Memo{cache: c, fn: fn}, nil
}

// MustMemo is NewMemo for package-level variables.
func MustMemo(size int, fn func(string) bool) *Memo {
	m, err := NewMemo(size, fn)
	if err != nil {
		panic(err)
	}
	return m
}

// Check returns fn(key), computing it at most once while key stays cached.
func (m *Memo) Check(key string) bool {
	if val, ok := m.cache.Get(key); ok {
		return val.(bool)
	}
	result := m.fn(key)
	m.cache.Add(key, result)
	return result
}

// Len reports the number of remembered keys.
func (m *Memo) Len() int {
	return m.cache.Len()
}
