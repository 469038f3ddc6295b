// Package premium is the dataset collaborator behind the payment gate: an
// append-only searchable collection of catalog items and the HTTP routes
// serving it.
package premium

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Item is one dataset entry.
type Item struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Snippet   string    `json:"snippet"`
	CreatedAt time.Time `json:"createdAt"`
	Creator   string    `json:"creator"`
}

// Store is the narrow storage interface the routes depend on. Search must
// be safe under concurrent readers; Append must be atomic, with a new entry
// visible to readers only after it is fully constructed.
type Store interface {
	Search(term string) []Item
	Append(item Item) Item
	Len() int
}

// MemoryStore is an in-memory Store. Appends prepend, so newest entries
// rank first in search results.
type MemoryStore struct {
	mu    sync.RWMutex
	items []Item
}

// NewMemoryStore creates a store seeded with the given items.
func NewMemoryStore(seed []Item) *MemoryStore {
	items := make([]Item, len(seed))
	copy(items, seed)
	return &MemoryStore{items: items}
}

// Search returns every item whose title, snippet or URL contains term,
// case-insensitively. An empty term matches everything.
func (s *MemoryStore) Search(term string) []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()

	term = strings.ToLower(strings.TrimSpace(term))
	results := make([]Item, 0, len(s.items))
	for _, item := range s.items {
		if term == "" || matches(item, term) {
			results = append(results, item)
		}
	}
	return results
}

// Append stores a fully constructed copy of item, filling in ID and
// CreatedAt when absent, and returns the stored entry.
func (s *MemoryStore) Append(item Item) Item {
	if item.ID == "" {
		item.ID = "user-" + uuid.NewString()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append([]Item{item}, s.items...)
	return item
}

// Len returns the number of stored items.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func matches(item Item, term string) bool {
	haystack := strings.ToLower(item.Title + " " + item.Snippet + " " + item.URL)
	return strings.Contains(haystack, term)
}
