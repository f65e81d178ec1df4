package dataset

import (
	"fmt"

	"talk_enricher/internal/domain"
)

// Pair is a left row combined with one matching right row. Right is nil
// when no right row matched. Right points into the right input slice and
// must be treated as read-only.
type Pair[L, R any] struct {
	Left  L
	Right *R
}

// LeftOuterJoin emits every left row at least once. A left row whose key
// matches several right rows fans out to one Pair per match.
func LeftOuterJoin[L, R any](left []L, right []R, leftKey KeyFunc[L], rightKey KeyFunc[R]) []Pair[L, R] {
	return probe(left, right, index(right, rightKey), leftKey)
}

// LeftOuterJoinUnique is LeftOuterJoin for one-to-one lookups. It fails
// with domain.ErrDuplicateKey instead of fanning out when a left row matches
// more than one right row. Repeated right keys no left row asks for are
// ignored.
func LeftOuterJoinUnique[L, R any](left []L, right []R, leftKey KeyFunc[L], rightKey KeyFunc[R]) ([]Pair[L, R], error) {
	idx := index(right, rightKey)
	for _, l := range left {
		k, ok := leftKey(l)
		if !ok {
			continue
		}
		if n := len(idx[k]); n > 1 {
			return nil, fmt.Errorf("%w: %q matches %d rows", domain.ErrDuplicateKey, k, n)
		}
	}
	return probe(left, right, idx, leftKey), nil
}

func index[R any](rows []R, key KeyFunc[R]) map[string][]int {
	idx := make(map[string][]int, len(rows))
	for i, row := range rows {
		k, ok := key(row)
		if !ok {
			continue
		}
		idx[k] = append(idx[k], i)
	}
	return idx
}

func probe[L, R any](left []L, right []R, idx map[string][]int, leftKey KeyFunc[L]) []Pair[L, R] {
	out := make([]Pair[L, R], 0, len(left))
	for _, l := range left {
		var matches []int
		if k, ok := leftKey(l); ok {
			matches = idx[k]
		}
		if len(matches) == 0 {
			out = append(out, Pair[L, R]{Left: l})
			continue
		}
		for _, i := range matches {
			out = append(out, Pair[L, R]{Left: l, Right: &right[i]})
		}
	}
	return out
}
