// Package dataset implements the relational operators used by the
// enrichment pipeline: left outer join, group aggregation, explode, dedup
// and null filtering. Every operator is a pure function over an in-memory
// row set and returns a new slice; inputs are never modified.
//
// No operator guarantees output order. Callers that need a stable order
// must sort explicitly (see OrderBy).
package dataset

// KeyFunc extracts a join or grouping key from a row. ok is false when the
// key is null. Null keys never match anything, including other null keys.
type KeyFunc[T any] func(row T) (key string, ok bool)

// StringKey builds a KeyFunc from a nullable string field.
func StringKey[T any](field func(T) *string) KeyFunc[T] {
	return func(row T) (string, bool) {
		v := field(row)
		if v == nil {
			return "", false
		}
		return *v, true
	}
}

// Value adapts a nullable string field for GroupAggregate. Null values are
// skipped.
func Value[T any](field func(T) *string) func(T) (string, bool) {
	return func(row T) (string, bool) {
		v := field(row)
		if v == nil {
			return "", false
		}
		return *v, true
	}
}
