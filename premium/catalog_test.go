package premium

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCatalogFile(t *testing.T, root, category, locale, content string) {
	t.Helper()
	dir := filepath.Join(root, category)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, locale+".json"), []byte(content), 0o644))
}

func TestLoadCatalog(t *testing.T) {
	root := t.TempDir()
	writeCatalogFile(t, root, "weather", "id", `{
		"categoryName": "Cuaca",
		"apis": [
			{
				"apiName": "OpenWeather",
				"documentationUrl": "https://openweathermap.org/api",
				"description": "Current weather data.",
				"developer": {"name": "OpenWeather Ltd"},
				"authentication": "apiKey",
				"status": true
			},
			{
				"apiName": "Dead Weather",
				"documentationUrl": "https://example.com",
				"description": "Gone.",
				"status": false
			}
		]
	}`)

	items := LoadCatalog(root, "id", nil)
	require.Len(t, items, 2)

	first := items[0]
	assert.Equal(t, "OpenWeather", first.Title)
	assert.Equal(t, "https://openweathermap.org/api", first.URL)
	assert.Contains(t, first.Snippet, "Current weather data.")
	assert.Contains(t, first.Snippet, "Category: Cuaca.")
	assert.Contains(t, first.Snippet, "Auth: apiKey.")
	assert.Contains(t, first.Snippet, "Status: active.")
	assert.Contains(t, first.Snippet, "Developer: OpenWeather Ltd.")
	assert.Equal(t, "api-catalog", first.Creator)
	assert.NotEmpty(t, first.ID)

	assert.Contains(t, items[1].Snippet, "Status: inactive.")
	assert.Contains(t, items[1].Snippet, "Auth: none.")
}

func TestLoadCatalogLocaleFallback(t *testing.T) {
	root := t.TempDir()
	writeCatalogFile(t, root, "finance", "en", `{
		"categoryName": "Finance",
		"apis": [{"apiName": "Ledger API", "documentationUrl": "https://example.com", "description": "Books."}]
	}`)

	// Requested locale is missing; the loader falls back through id to en.
	items := LoadCatalog(root, "fr", nil)
	require.Len(t, items, 1)
	assert.Equal(t, "Ledger API", items[0].Title)
}

func TestLoadCatalogMissingRoot(t *testing.T) {
	items := LoadCatalog(filepath.Join(t.TempDir(), "does-not-exist"), "id", nil)
	assert.Empty(t, items)
}

func TestLoadCatalogSkipsUnreadableFiles(t *testing.T) {
	root := t.TempDir()
	writeCatalogFile(t, root, "broken", "id", `{not json`)
	writeCatalogFile(t, root, "ok", "id", `{
		"categoryName": "OK",
		"apis": [{"apiName": "Works", "documentationUrl": "https://example.com", "description": "Fine."}]
	}`)

	items := LoadCatalog(root, "id", nil)
	require.Len(t, items, 1)
	assert.Equal(t, "Works", items[0].Title)
}
