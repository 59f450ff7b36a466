// Package reconcile merges decoded legacy records across sources and derives
// per-sale aggregates.
//
// Work is split in two phases. Collection (Collect, Merge) builds immutable
// Candidates from decoded records. Reconciliation (AssignUnique,
// SummarizeSales, Split) is made of pure functions over those values, so the
// result never depends on hidden accumulation order.
package reconcile

import (
	"slices"
)

// Candidates maps an owning legacy id to the distinct candidate values
// proposed for it, in first-seen order. A Candidates value is never mutated
// after construction.
type Candidates struct {
	byOwner map[int64][]string
}

// Collect builds Candidates from items. Items whose value is empty are
// ignored; duplicate values for the same owner are kept once.
func Collect[T any](items []T, owner func(T) int64, value func(T) string) Candidates {
	by := make(map[int64][]string)
	for _, it := range items {
		v := value(it)
		if v == "" {
			continue
		}
		id := owner(it)
		if !slices.Contains(by[id], v) {
			by[id] = append(by[id], v)
		}
	}
	return Candidates{byOwner: by}
}

// Merge combines candidate sources by precedence. primary's values come
// first; each lower source only adds values its owner does not already have.
func Merge(primary Candidates, lower ...Candidates) Candidates {
	by := make(map[int64][]string, len(primary.byOwner))
	for id, vals := range primary.byOwner {
		by[id] = slices.Clone(vals)
	}
	for _, src := range lower {
		for _, id := range src.Owners() {
			for _, v := range src.byOwner[id] {
				if !slices.Contains(by[id], v) {
					by[id] = append(by[id], v)
				}
			}
		}
	}
	return Candidates{byOwner: by}
}

// Owners returns the owning ids in ascending order.
func (c Candidates) Owners() []int64 {
	ids := make([]int64, 0, len(c.byOwner))
	for id := range c.byOwner {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Values returns a copy of the candidates for id, in precedence order.
func (c Candidates) Values(id int64) []string {
	return slices.Clone(c.byOwner[id])
}

// Len is the number of owners with at least one candidate.
func (c Candidates) Len() int { return len(c.byOwner) }

// Total is the number of candidate values across all owners.
func (c Candidates) Total() int {
	n := 0
	for _, v := range c.byOwner {
		n += len(v)
	}
	return n
}

// Assignment is the result of AssignUnique.
type Assignment struct {
	// Values holds the value assigned to each resolved owner.
	Values map[int64]string
	// Unresolved lists, in ascending order, the owners whose candidates were
	// all claimed by lower ids.
	Unresolved []int64
}

// Owners returns the resolved owners in ascending order.
func (a Assignment) Owners() []int64 {
	ids := make([]int64, 0, len(a.Values))
	for id := range a.Values {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// AssignUnique gives each owner at most one value so that no value is used
// twice. Owners are visited in ascending id order and each takes its
// lexically smallest candidate not already claimed. An owner left without a
// value is recorded as unresolved; that is a reportable conflict, not an
// error.
func AssignUnique(c Candidates) Assignment {
	out := Assignment{Values: make(map[int64]string, c.Len())}
	claimed := make(map[string]struct{}, c.Total())

	for _, id := range c.Owners() {
		vals := c.Values(id)
		slices.Sort(vals)
		assigned := false
		for _, v := range vals {
			if _, taken := claimed[v]; taken {
				continue
			}
			claimed[v] = struct{}{}
			out.Values[id] = v
			assigned = true
			break
		}
		if !assigned {
			out.Unresolved = append(out.Unresolved, id)
		}
	}
	return out
}
