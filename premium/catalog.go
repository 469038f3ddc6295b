package premium

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// catalogCategory is one category file of the public API catalog the
// premium dataset is seeded from.
type catalogCategory struct {
	CategoryName string         `json:"categoryName"`
	APIs         []catalogEntry `json:"apis"`
}

type catalogEntry struct {
	APIName          string            `json:"apiName"`
	Status           *bool             `json:"status"`
	DocumentationURL string            `json:"documentationUrl"`
	Developer        *catalogDeveloper `json:"developer"`
	Description      string            `json:"description"`
	Authentication   json.RawMessage   `json:"authentication"`
}

type catalogDeveloper struct {
	Name string `json:"name"`
}

// LoadCatalog reads the catalog directory layout (one subdirectory per
// category, each holding per-locale JSON files) and flattens it into
// dataset items. A missing root yields an empty dataset, not an error; the
// gate still works with nothing behind it.
func LoadCatalog(root, locale string, logger *slog.Logger) []Item {
	if logger == nil {
		logger = slog.Default()
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		logger.Warn("catalog dataset not found", "path", root)
		return nil
	}

	if locale == "" {
		locale = "id"
	}
	locale = strings.ToLower(locale)

	var items []Item
	counter := 0
	now := time.Now().UTC()

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(root, entry.Name())
		path := pickLocaleFile(dir, locale)
		if path == "" {
			continue
		}

		raw, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var category catalogCategory
		if err := json.Unmarshal(raw, &category); err != nil {
			logger.Warn("skipping unreadable catalog file", "path", path, "error", err)
			continue
		}

		name := category.CategoryName
		if name == "" {
			name = entry.Name()
		}

		for _, api := range category.APIs {
			items = append(items, catalogItem(entry.Name(), name, api, counter, now))
			counter++
		}
	}

	logger.Info("catalog dataset loaded", "items", len(items), "root", root)
	return items
}

// pickLocaleFile prefers the requested locale, then "id", then "en".
func pickLocaleFile(dir, locale string) string {
	seen := map[string]bool{}
	for _, candidate := range []string{locale, "id", "en"} {
		if seen[candidate] {
			continue
		}
		seen[candidate] = true
		path := filepath.Join(dir, candidate+".json")
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func catalogItem(dirName, categoryName string, api catalogEntry, counter int, now time.Time) Item {
	title := api.APIName
	if title == "" {
		title = "Unknown API"
	}
	description := api.Description
	if description == "" {
		description = "No description available."
	}

	parts := []string{
		description,
		"Category: " + categoryName + ".",
		"Auth: " + formatAuth(api.Authentication) + ".",
		"Status: " + formatStatus(api.Status) + ".",
	}
	if api.Developer != nil && api.Developer.Name != "" {
		parts = append(parts, "Developer: "+api.Developer.Name+".")
	}

	return Item{
		ID:        fmt.Sprintf("catalog-%s-%d", dirName, counter),
		Title:     title,
		URL:       api.DocumentationURL,
		Snippet:   strings.Join(parts, " "),
		CreatedAt: now,
		Creator:   "api-catalog",
	}
}

// formatAuth renders the catalog's mixed-type authentication field
// (bool, string or null) as a label.
func formatAuth(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" || string(raw) == "false" {
		return "none"
	}
	if string(raw) == "true" {
		return "required"
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.Trim(string(raw), `"`)
}

func formatStatus(status *bool) string {
	if status != nil && !*status {
		return "inactive"
	}
	return "active"
}
