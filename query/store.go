// Package query is the request lifecycle layer shared by every read and
// write: reads are named, parameterized queries with a keyed cache, writes
// are mutations with an explicit post-success invalidation list. State per
// request moves forward-only through idle, pending, success and error.
package query

import (
	"errors"
	"strings"

	"github.com/jellydator/ttlcache/v3"
)

var (
	// ErrKeyUnresolved is returned when a query's key inputs are not all
	// available (e.g. no wallet connected). The fetch does not execute and
	// no stale cross-key result is returned.
	ErrKeyUnresolved = errors.New("query key not resolvable")

	// ErrMutationPending is returned when Do is invoked while a previous
	// invocation of the same mutation is still in flight.
	ErrMutationPending = errors.New("mutation already pending")
)

const keySeparator = "/"

// Key is a structured cache key. Every input that affects a query's result
// must be part of its key.
type Key string

// NewKey joins key parts into a structured key. An empty part marks the key
// unresolvable, which disables the query instead of aliasing it.
func NewKey(parts ...string) Key {
	for _, p := range parts {
		if p == "" {
			return ""
		}
	}
	return Key(strings.Join(parts, keySeparator))
}

func (k Key) Resolvable() bool {
	return k != ""
}

// Store is a process-wide cache of query results keyed by Key. Entries are
// written only from fully resolved fetch results, never partially.
type Store struct {
	cache *ttlcache.Cache[Key, any]
}

func NewStore() *Store {
	return &Store{
		cache: ttlcache.New[Key, any](),
	}
}

// Invalidate drops the cached entry for a key. Invalidating an absent or
// unchanged entry is harmless; the next read re-fetches.
func (s *Store) Invalidate(key Key) {
	if !key.Resolvable() {
		return
	}
	s.cache.Delete(key)
}

// InvalidatePrefix drops every cached entry under a key prefix, e.g. all
// per-wallet recipient records.
func (s *Store) InvalidatePrefix(prefix Key) {
	if !prefix.Resolvable() {
		return
	}
	var doomed []Key
	s.cache.Range(func(item *ttlcache.Item[Key, any]) bool {
		if strings.HasPrefix(string(item.Key()), string(prefix)) {
			doomed = append(doomed, item.Key())
		}
		return true
	})
	for _, key := range doomed {
		s.cache.Delete(key)
	}
}

func (s *Store) get(key Key) (any, bool) {
	item := s.cache.Get(key)
	if item == nil {
		return nil, false
	}
	return item.Value(), true
}

func (s *Store) set(key Key, value any) {
	s.cache.Set(key, value, ttlcache.NoTTL)
}
