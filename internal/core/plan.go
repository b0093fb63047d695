package core

import (
	"fmt"
	"sort"
	"strings"
)

// Plan returns the registered tables in load order: every table comes after
// the tables it depends on, and ties keep registration order. Edges listed
// in Defers are patched later by the loaders and are not part of the order.
func Plan() ([]TableDefinition, error) {
	return plan(All())
}

func plan(defs []TableDefinition) ([]TableDefinition, error) {
	byKey := make(map[string]TableDefinition, len(defs))
	for _, def := range defs {
		byKey[def.Info.Key] = def
	}

	indegree := make(map[string]int, len(defs))
	dependents := make(map[string][]string, len(defs))

	for _, def := range defs {
		deferred := make(map[string]bool, len(def.Info.Defers))
		for _, d := range def.Info.Defers {
			if _, ok := byKey[d]; !ok {
				return nil, fmt.Errorf("table %s defers unknown table %s", def.Info.Key, d)
			}
			deferred[d] = true
		}

		seen := make(map[string]bool, len(def.Info.DependsOn))
		for _, dep := range def.Info.DependsOn {
			if _, ok := byKey[dep]; !ok {
				return nil, fmt.Errorf("table %s depends on unknown table %s", def.Info.Key, dep)
			}
			if dep == def.Info.Key {
				return nil, fmt.Errorf("table %s depends on itself", dep)
			}
			if deferred[dep] || seen[dep] {
				continue
			}
			seen[dep] = true
			indegree[def.Info.Key]++
			dependents[dep] = append(dependents[dep], def.Info.Key)
		}
	}

	// Kahn's algorithm; the ready set is kept sorted by registration order.
	var ready []TableDefinition
	for _, def := range defs {
		if indegree[def.Info.Key] == 0 {
			ready = append(ready, def)
		}
	}

	order := make([]TableDefinition, 0, len(defs))
	for len(ready) > 0 {
		sort.SliceStable(ready, func(i, j int) bool { return ready[i].seq < ready[j].seq })
		next := ready[0]
		ready = ready[1:]
		order = append(order, next)

		for _, child := range dependents[next.Info.Key] {
			indegree[child]--
			if indegree[child] == 0 {
				ready = append(ready, byKey[child])
			}
		}
	}

	if len(order) != len(defs) {
		var stuck []string
		for _, def := range defs {
			if indegree[def.Info.Key] > 0 {
				stuck = append(stuck, def.Info.Key)
			}
		}
		return nil, fmt.Errorf("dependency cycle between tables %s; declare one edge in Defers", strings.Join(stuck, ", "))
	}

	return order, nil
}

// PlanKeys returns the table keys of Plan, for logging.
func PlanKeys(defs []TableDefinition) []string {
	keys := make([]string, len(defs))
	for i, def := range defs {
		keys[i] = def.Info.Key
	}
	return keys
}
