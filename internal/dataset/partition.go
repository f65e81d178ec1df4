package dataset

import (
	"context"
	"hash/fnv"
	"slices"

	"golang.org/x/sync/errgroup"
)

// PartitionedLeftOuterJoin hash-partitions both inputs on their keys and
// joins the partitions concurrently. The result has the same rows as
// LeftOuterJoin, in a different order. Left rows with a null key all land
// in partition 0 and come out unmatched.
func PartitionedLeftOuterJoin[L, R any](ctx context.Context, left []L, right []R, leftKey KeyFunc[L], rightKey KeyFunc[R], partitions int) ([]Pair[L, R], error) {
	if partitions <= 1 {
		return LeftOuterJoin(left, right, leftKey, rightKey), nil
	}

	leftParts := partition(left, leftKey, partitions, true)
	rightParts := partition(right, rightKey, partitions, false)
	results := make([][]Pair[L, R], partitions)

	g, gctx := errgroup.WithContext(ctx)
	for p := range partitions {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[p] = LeftOuterJoin(leftParts[p], rightParts[p], leftKey, rightKey)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return slices.Concat(results...), nil
}

func partition[T any](rows []T, key KeyFunc[T], n int, keepNull bool) [][]T {
	parts := make([][]T, n)
	for _, row := range rows {
		k, ok := key(row)
		if !ok {
			if keepNull {
				parts[0] = append(parts[0], row)
			}
			continue
		}
		p := partitionOf(k, n)
		parts[p] = append(parts[p], row)
	}
	return parts
}

func partitionOf(key string, n int) int {
	h := fnv.New32a()
	h.Write([]byte(key))
	return int(h.Sum32() % uint32(n))
}
