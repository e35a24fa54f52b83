package database

import "sort"

// sortedOptionPairs merges defaults under overrides and renders key=value
// pairs in deterministic order so built DSNs are stable across restarts.
func sortedOptionPairs(overrides, defaults map[string]string) []string {
	merged := make(map[string]string, len(defaults)+len(overrides))
	for key, value := range defaults {
		merged[key] = value
	}
	for key, value := range overrides {
		merged[key] = value
	}

	keys := make([]string, 0, len(merged))
	for key := range merged {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, len(keys))
	for i, key := range keys {
		pairs[i] = key + "=" + merged[key]
	}
	return pairs
}

func hostOrDefault(host, fallback string) string {
	if host == "" {
		return fallback
	}
	return host
}

func portOrDefault(port, fallback int) int {
	if port == 0 {
		return fallback
	}
	return port
}
