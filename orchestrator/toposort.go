package orchestrator

import (
	"sort"

	"performa/cashflow"
	"performa/internal/apperrors"
)

// buildPasses runs Kahn's algorithm over reg's dependency graph, grouping
// models with no remaining unresolved dependency into the same pass. Pass
// k contains every model whose Dependencies are entirely satisfied by
// passes 1..k-1 (spec.md §4.4.2); within a pass, model IDs are sorted
// lexicographically here for the deterministic execution order
// spec.md §4.4's tie-break requires.
func buildPasses(reg *cashflow.Registry) ([][]string, error) {
	models := reg.All()

	indegree := make(map[string]int, len(models))
	dependents := make(map[string][]string, len(models))
	known := make(map[string]bool, len(models))

	for _, m := range models {
		known[m.ID()] = true
	}
	for _, m := range models {
		for _, dep := range m.Dependencies() {
			if !known[dep] {
				return nil, apperrors.Newf(apperrors.KindDependencyCycle,
					"model %s depends on unregistered model %s", m.ID(), dep).WithModel(m.ID())
			}
			indegree[m.ID()]++
			dependents[dep] = append(dependents[dep], m.ID())
		}
	}

	var ready []string
	for _, m := range models {
		if indegree[m.ID()] == 0 {
			ready = append(ready, m.ID())
		}
	}

	var passes [][]string
	resolved := 0

	for len(ready) > 0 {
		sort.Strings(ready)
		passes = append(passes, ready)
		resolved += len(ready)

		var next []string
		for _, id := range ready {
			for _, dependent := range dependents[id] {
				indegree[dependent]--
				if indegree[dependent] == 0 {
					next = append(next, dependent)
				}
			}
		}
		ready = next
	}

	if resolved != len(models) {
		var stuck []string
		for id, deg := range indegree {
			if deg > 0 {
				stuck = append(stuck, id)
			}
		}
		sort.Strings(stuck)
		return nil, apperrors.Newf(apperrors.KindDependencyCycle,
			"dependency cycle detected among models: %v", stuck)
	}

	return passes, nil
}
