package dev

import (
	"path/filepath"

	"github.com/cubic-dev/ui/internal/config"
)

// CollectWatchPaths returns the de-duplicated paths whose changes affect
// the endpoint table: the sites tree, the local manifest and the config file.
func CollectWatchPaths(cfg *config.Config) []string {
	paths := []string{
		cfg.SitesPath(),
		cfg.EndpointsPath(),
		cfg.Path(),
	}

	unique := make([]string, 0, len(paths))
	seen := make(map[string]struct{}, len(paths))
	for _, path := range paths {
		if path == "" {
			continue
		}
		clean := filepath.Clean(path)
		if _, ok := seen[clean]; ok {
			continue
		}
		seen[clean] = struct{}{}
		unique = append(unique, clean)
	}

	return unique
}
