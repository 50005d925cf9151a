package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// SavedSearch is a named Gmail query offered on the inbox page and
// accepted by the CSV export endpoint.
type SavedSearch struct {
	Name  string `yaml:"name"`
	Query string `yaml:"query"`
}

// LoadSavedSearches loads saved searches from a YAML file.
// An empty path means the feature is disabled and yields no searches.
func LoadSavedSearches(path string) ([]SavedSearch, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read saved searches file: %w", err)
	}

	var doc struct {
		Searches []SavedSearch `yaml:"searches"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse saved searches file: %w", err)
	}

	// Drop entries without a query; a missing name falls back to the query itself
	out := make([]SavedSearch, 0, len(doc.Searches))
	for _, s := range doc.Searches {
		if strings.TrimSpace(s.Query) == "" {
			continue
		}
		if strings.TrimSpace(s.Name) == "" {
			s.Name = s.Query
		}
		out = append(out, s)
	}
	return out, nil
}
