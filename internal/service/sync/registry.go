// Package sync implements the ETL job execution pipeline: query the CRM
// platform, materialize a result set, and deliver it to a BI target.
package sync

import (
	"sort"

	"crmsync/internal/domain"
)

// Registry routes deliveries to target adapters by kind. The set of adapters
// is fixed at construction; adding a target kind means registering another
// adapter, never editing the runners.
type Registry struct {
	adapters map[domain.TargetKind]domain.TargetAdapter
}

// NewRegistry builds a registry from the given adapters. A later adapter with
// the same kind replaces an earlier one.
func NewRegistry(adapters ...domain.TargetAdapter) *Registry {
	r := &Registry{adapters: make(map[domain.TargetKind]domain.TargetAdapter, len(adapters))}
	for _, a := range adapters {
		r.adapters[a.Kind()] = a
	}
	return r
}

// Lookup returns the adapter for kind, or false when the kind is unknown.
func (r *Registry) Lookup(kind domain.TargetKind) (domain.TargetAdapter, bool) {
	a, ok := r.adapters[kind]
	return a, ok
}

// Kinds returns the recognized target kinds in sorted order.
func (r *Registry) Kinds() []domain.TargetKind {
	kinds := make([]domain.TargetKind, 0, len(r.adapters))
	for k := range r.adapters {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
