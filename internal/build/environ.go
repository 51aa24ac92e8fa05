package build

import "sort"

// Formats a recipe environment map as sorted "key=value" entries.
//
// The order is deterministic so the entries can participate in the layer
// cache key: two recipes with the same environment always serialize
// identically.
func environ(env map[string]string) []string {
	entries := make([]string, 0, len(env))
	for k, v := range env {
		entries = append(entries, k+"="+v)
	}
	sort.Strings(entries)
	return entries
}
