package premium

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedItems() []Item {
	return []Item{
		{ID: "1", Title: "Weather API", URL: "https://example.com/weather", Snippet: "Forecast data for Jakarta.", Creator: "seed"},
		{ID: "2", Title: "Funding news", URL: "https://example.com/funding", Snippet: "Startup funding rounds.", Creator: "seed"},
		{ID: "3", Title: "Infrastructure", URL: "https://example.com/infra", Snippet: "Cloud weather patterns.", Creator: "seed"},
	}
}

func TestMemoryStoreSearch(t *testing.T) {
	store := NewMemoryStore(seedItems())

	results := store.Search("weather")
	require.Len(t, results, 2, "matches title and snippet, case-insensitive")

	assert.Len(t, store.Search("WEATHER"), 2)
	assert.Len(t, store.Search("funding"), 1)
	assert.Empty(t, store.Search("blockchain"))

	// Empty term matches everything.
	assert.Len(t, store.Search(""), 3)
}

func TestMemoryStoreAppend(t *testing.T) {
	store := NewMemoryStore(nil)

	item := store.Append(Item{Title: "New dataset", URL: "https://example.com/x", Snippet: "fresh", Creator: "alice"})

	assert.NotEmpty(t, item.ID)
	assert.Contains(t, item.ID, "user-")
	assert.False(t, item.CreatedAt.IsZero())
	assert.Equal(t, 1, store.Len())

	// Appended items are immediately searchable.
	require.Len(t, store.Search("fresh"), 1)
}

func TestMemoryStoreAppendPrepends(t *testing.T) {
	store := NewMemoryStore(seedItems())
	store.Append(Item{Title: "Newest", URL: "https://example.com/n", Snippet: "s", Creator: "bob"})

	all := store.Search("")
	require.NotEmpty(t, all)
	assert.Equal(t, "Newest", all[0].Title)
}

func TestMemoryStoreConcurrentAccess(t *testing.T) {
	store := NewMemoryStore(nil)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			store.Append(Item{
				Title:   fmt.Sprintf("item %d", i),
				URL:     "https://example.com",
				Snippet: "concurrent",
				Creator: "test",
			})
			store.Search("item")
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 32, store.Len())
	assert.Len(t, store.Search("concurrent"), 32)
}

func TestMemoryStoreSearchReturnsCopy(t *testing.T) {
	store := NewMemoryStore(seedItems())

	results := store.Search("")
	results[0].Title = "mutated"

	assert.NotEqual(t, "mutated", store.Search("")[0].Title)
}
