package dataset

import "slices"

// Group is one aggregated group. Null marks the group of rows whose key was
// null; such rows are kept together rather than discarded.
type Group[V any] struct {
	Key    string
	Null   bool
	Values []V
}

// GroupKey is the KeyFunc of an aggregated group, for joining aggregates
// back onto rows.
func GroupKey[V any](g Group[V]) (string, bool) {
	return g.Key, !g.Null
}

type GroupOption[V any] func(*groupOptions[V])

type groupOptions[V any] struct {
	cmp func(a, b V) int
}

// OrderBy sorts the values of every group with cmp.
func OrderBy[V any](cmp func(a, b V) int) GroupOption[V] {
	return func(o *groupOptions[V]) {
		o.cmp = cmp
	}
}

// GroupAggregate groups rows by key and collects one value per row into the
// group's list. collect returns ok=false to skip a value; the row still
// belongs to its group, so a group whose values are all skipped has an
// empty, non-nil list.
//
// Groups come out in first-seen order of their key. Values keep input order
// unless OrderBy is given.
func GroupAggregate[T, V any](rows []T, key KeyFunc[T], collect func(T) (V, bool), opts ...GroupOption[V]) []Group[V] {
	var o groupOptions[V]
	for _, opt := range opts {
		opt(&o)
	}

	var groups []Group[V]
	pos := make(map[string]int)
	nullPos := -1

	for _, row := range rows {
		var i int
		k, ok := key(row)
		switch {
		case !ok && nullPos >= 0:
			i = nullPos
		case !ok:
			nullPos = len(groups)
			i = nullPos
			groups = append(groups, Group[V]{Null: true, Values: []V{}})
		default:
			p, seen := pos[k]
			if !seen {
				p = len(groups)
				pos[k] = p
				groups = append(groups, Group[V]{Key: k, Values: []V{}})
			}
			i = p
		}

		if v, keep := collect(row); keep {
			groups[i].Values = append(groups[i].Values, v)
		}
	}

	if o.cmp != nil {
		for i := range groups {
			slices.SortStableFunc(groups[i].Values, o.cmp)
		}
	}

	return groups
}
