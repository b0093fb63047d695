package core

import (
	"fmt"
	"sort"

	"github.com/JonMunkholm/sakilaimport/internal/model"
)

// pendingSet is the type-erased view the orchestrator uses to check that
// every deferred side table was drained.
type pendingSet interface {
	Verify() error
}

// Deferred breaks a reference cycle between two tables. Members of the
// table that loads first are parked under the key of the entity they
// reference; when that entity is created the entry is drained and each
// member gets its back-reference.
type Deferred[T model.Entity] struct {
	owner  string // table whose members wait, e.g. "staff"
	target string // table they reference, e.g. "store"
	byKey  map[int][]T
}

// Defer parks member until the target entity with key is created.
func (d *Deferred[T]) Defer(key int, member T) {
	d.byKey[key] = append(d.byKey[key], member)
}

// Drain removes and returns the members waiting for key.
func (d *Deferred[T]) Drain(key int) []T {
	members := d.byKey[key]
	delete(d.byKey, key)
	return members
}

// Len returns the number of keys still waiting.
func (d *Deferred[T]) Len() int { return len(d.byKey) }

// Keys returns the keys still waiting, ascending.
func (d *Deferred[T]) Keys() []int {
	keys := make([]int, 0, len(d.byKey))
	for k := range d.byKey {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// Verify fails if any member is still waiting: its target key never loaded.
func (d *Deferred[T]) Verify() error {
	if len(d.byKey) == 0 {
		return nil
	}
	return &IntegrityError{
		Kind:   DanglingReference,
		Table:  d.owner,
		Field:  d.target + "_id",
		Target: d.target,
		Keys:   d.Keys(),
	}
}

// Pending returns the run's side table for references from owner to
// target, creating it on first use.
func Pending[T model.Entity](r *Run, owner, target string) (*Deferred[T], error) {
	name := owner + "->" + target
	if raw, ok := r.pending[name]; ok {
		d, ok := raw.(*Deferred[T])
		if !ok {
			return nil, fmt.Errorf("deferred %s holds %T, not the requested entity type", name, raw)
		}
		return d, nil
	}
	d := &Deferred[T]{owner: owner, target: target, byKey: make(map[int][]T)}
	r.pending[name] = d
	r.order = append(r.order, name)
	return d, nil
}

// verifyPending checks every side table of the run, in creation order.
func (r *Run) verifyPending() error {
	for _, name := range r.order {
		if err := r.pending[name].Verify(); err != nil {
			return err
		}
	}
	return nil
}
