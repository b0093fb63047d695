package core

import (
	"fmt"
	"sort"
	"sync"
)

var (
	registry   = make(map[string]TableDefinition)
	registryMu sync.RWMutex
	nextSeq    int
)

// Register adds a table definition to the registry.
// Panics if a table with the same key is already registered or has no loader.
func Register(def TableDefinition) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[def.Info.Key]; exists {
		panic(fmt.Sprintf("table already registered: %s", def.Info.Key))
	}
	if def.Load == nil {
		panic(fmt.Sprintf("table %s registered without a loader", def.Info.Key))
	}
	if def.Info.Label == "" {
		def.Info.Label = def.Info.Key
	}

	def.seq = nextSeq
	nextSeq++
	registry[def.Info.Key] = def
}

// All returns all registered table definitions in registration order.
func All() []TableDefinition {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]TableDefinition, 0, len(registry))
	for _, def := range registry {
		result = append(result, def)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].seq < result[j].seq
	})

	return result
}

// ByGroup returns all table definitions for a specific group,
// in registration order.
func ByGroup(group string) []TableDefinition {
	var result []TableDefinition
	for _, def := range All() {
		if def.Info.Group == group {
			result = append(result, def)
		}
	}
	return result
}

// Groups returns all unique group names in the order they were first registered.
func Groups() []string {
	seen := make(map[string]bool)
	var groups []string
	for _, def := range All() {
		if !seen[def.Info.Group] {
			seen[def.Info.Group] = true
			groups = append(groups, def.Info.Group)
		}
	}
	return groups
}

// Clear removes all registered tables.
// Primarily useful for testing.
func Clear() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[string]TableDefinition)
	nextSeq = 0
}
