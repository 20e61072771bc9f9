package session

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/kiranshivaraju/partscout/internal/catalog"
)

// Store keeps the most recently used sessions. When capacity is exceeded the
// least recently used session is evicted and closed, which cancels its
// in-flight diagnosis.
type Store struct {
	cat   *catalog.Catalog
	mu    sync.Mutex
	cache *lru.Cache[string, *Session]
}

// NewStore creates a Store holding at most capacity sessions.
func NewStore(capacity int, cat *catalog.Catalog) (*Store, error) {
	cache, err := lru.NewWithEvict(capacity, func(_ string, s *Session) {
		s.Close()
	})
	if err != nil {
		return nil, fmt.Errorf("creating session cache: %w", err)
	}
	return &Store{cat: cat, cache: cache}, nil
}

// Get returns the session for id and marks it as recently used.
func (st *Store) Get(id string) (*Session, bool) {
	return st.cache.Get(id)
}

// GetOrCreate returns the session for id, creating a fresh one under a new
// ID when id is unknown. created reports whether a new session was made.
func (st *Store) GetOrCreate(id string) (s *Session, created bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if id != "" {
		if s, ok := st.cache.Get(id); ok {
			return s, false
		}
	}
	s = New(uuid.NewString(), st.cat)
	st.cache.Add(s.ID(), s)
	return s, true
}

// Remove closes and drops the session for id.
func (st *Store) Remove(id string) {
	st.cache.Remove(id)
}

func (st *Store) Len() int { return st.cache.Len() }

// Close closes every session.
func (st *Store) Close() {
	st.cache.Purge()
}
