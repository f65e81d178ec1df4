package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talk_enricher/testdata/utils"
)

type pair struct {
	Main, Internal string
}

func TestExplode(t *testing.T) {
	groups := []Group[string]{
		{Key: "t1", Values: []string{"i1", "i2"}},
		{Key: "t2", Values: []string{}},
		{Key: "t3"},
	}

	out := Explode(groups,
		func(g Group[string]) []string { return g.Values },
		func(g Group[string], id string) pair { return pair{Main: g.Key, Internal: id} },
	)

	assert.Equal(t, []pair{{"t1", "i1"}, {"t1", "i2"}}, out)
}

func TestDedup_KeepsFirstSeen(t *testing.T) {
	type rec struct {
		pair
		Seq int
	}
	rows := []rec{
		{pair{"t1", "i1"}, 1},
		{pair{"t1", "i2"}, 2},
		{pair{"t1", "i1"}, 3},
		{pair{"t2", "i1"}, 4},
	}
	key := func(r rec) pair { return r.pair }

	out := Dedup(rows, key)

	require.Len(t, out, 3)
	assert.Equal(t, []int{1, 2, 4}, []int{out[0].Seq, out[1].Seq, out[2].Seq})
}

func TestDedup_Idempotent(t *testing.T) {
	rows := []pair{{"a", "1"}, {"a", "1"}, {"b", "2"}, {"a", "2"}, {"b", "2"}}
	key := func(p pair) pair { return p }

	once := Dedup(rows, key)
	twice := Dedup(once, key)

	assert.Equal(t, once, twice)
}

func TestFilterNotNull(t *testing.T) {
	rows := []row{{ID: utils.Ptr("a")}, {}, {ID: utils.Ptr("b")}}

	out := FilterNotNull(rows, rowKey)

	require.Len(t, out, 2)
	assert.Equal(t, "a", *out[0].ID)
	assert.Equal(t, "b", *out[1].ID)
}
