package dataset

// Dedup keeps the first row seen for each distinct composite key.
func Dedup[T any, K comparable](rows []T, key func(T) K) []T {
	seen := make(map[K]struct{}, len(rows))
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		k := key(row)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, row)
	}
	return out
}

// FilterNotNull drops rows whose field is null.
func FilterNotNull[T any](rows []T, field KeyFunc[T]) []T {
	return Filter(rows, func(row T) bool {
		_, ok := field(row)
		return ok
	})
}

func Filter[T any](rows []T, keep func(T) bool) []T {
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		if keep(row) {
			out = append(out, row)
		}
	}
	return out
}
