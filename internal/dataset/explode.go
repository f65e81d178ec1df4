package dataset

// Explode emits one output row per element of each row's list. Rows with a
// nil or empty list produce nothing.
func Explode[T, E, O any](rows []T, list func(T) []E, emit func(row T, elem E) O) []O {
	var out []O
	for _, row := range rows {
		for _, e := range list(row) {
			out = append(out, emit(row, e))
		}
	}
	return out
}
