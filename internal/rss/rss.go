package rss

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// FeedsConfig is YAML config structure
// feeds:
//   - https://...
type FeedsConfig struct {
	Feeds []string `yaml:"feeds"`
}

// LoadFeeds reads the feed source list from a YAML file. Blank and duplicate
// entries are dropped; an empty list is an error.
func LoadFeeds(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open feeds config: %w", err)
	}
	defer f.Close()

	var cfg FeedsConfig
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode feeds config %s: %w", path, err)
	}

	seen := make(map[string]struct{}, len(cfg.Feeds))
	feeds := make([]string, 0, len(cfg.Feeds))
	for _, u := range cfg.Feeds {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		feeds = append(feeds, u)
	}

	if len(feeds) == 0 {
		return nil, errors.New("feeds config contains no feeds")
	}
	return feeds, nil
}
