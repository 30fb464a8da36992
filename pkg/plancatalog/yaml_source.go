package plancatalog

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadYAML parses a static fallback table from YAML. The document is a
// list of entries:
//
//	- slug: basic
//	  amount: 20000
//	  order_name: "Basic monthly"
//	- slug: pro
//	  amount: 50000
//	  order_name: "Pro monthly"
func LoadYAML(data []byte) (map[string]Entry, error) {
	var entries []Entry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, errors.Join(ErrInvalidCatalog, err)
	}

	table := make(map[string]Entry, len(entries))
	for _, entry := range entries {
		slug := strings.ToLower(strings.TrimSpace(entry.Slug))
		if slug == "" {
			return nil, fmt.Errorf("%w: entry with empty slug", ErrInvalidCatalog)
		}
		if entry.Amount < 0 {
			return nil, fmt.Errorf("%w: plan %s has negative amount %d", ErrInvalidCatalog, slug, entry.Amount)
		}
		if _, exists := table[slug]; exists {
			return nil, fmt.Errorf("%w: duplicate plan %s", ErrInvalidCatalog, slug)
		}
		entry.Slug = slug
		table[slug] = entry
	}
	return table, nil
}

// LoadYAMLFile reads and parses a fallback table from the given path.
func LoadYAMLFile(path string) (map[string]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("plancatalog: read %s: %w", path, err)
	}
	return LoadYAML(data)
}
