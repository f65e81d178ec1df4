package dataset

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talk_enricher/testdata/utils"
)

type link struct {
	Ref *string
	Tag *string
}

var (
	linkRef = StringKey(func(l link) *string { return l.Ref })
	linkTag = Value(func(l link) *string { return l.Tag })
)

func TestGroupAggregate_CollectsPerKey(t *testing.T) {
	rows := []link{
		{Ref: utils.Ptr("t1"), Tag: utils.Ptr("AI")},
		{Ref: utils.Ptr("t2"), Tag: utils.Ptr("Music")},
		{Ref: utils.Ptr("t1"), Tag: utils.Ptr("Design")},
	}

	groups := GroupAggregate(rows, linkRef, linkTag)

	require.Len(t, groups, 2)
	assert.Equal(t, "t1", groups[0].Key)
	assert.ElementsMatch(t, []string{"AI", "Design"}, groups[0].Values)
	assert.Equal(t, []string{"Music"}, groups[1].Values)
}

func TestGroupAggregate_NullKeyFormsOwnGroup(t *testing.T) {
	rows := []link{
		{Tag: utils.Ptr("x")},
		{Ref: utils.Ptr("t1"), Tag: utils.Ptr("AI")},
		{Tag: utils.Ptr("y")},
	}

	groups := GroupAggregate(rows, linkRef, linkTag)

	require.Len(t, groups, 2)
	assert.True(t, groups[0].Null)
	assert.Equal(t, []string{"x", "y"}, groups[0].Values)
	_, ok := GroupKey(groups[0])
	assert.False(t, ok)
}

func TestGroupAggregate_SkippedValuesKeepGroup(t *testing.T) {
	rows := []link{{Ref: utils.Ptr("t1")}}

	groups := GroupAggregate(rows, linkRef, linkTag)

	require.Len(t, groups, 1)
	assert.NotNil(t, groups[0].Values)
	assert.Empty(t, groups[0].Values)
}

func TestGroupAggregate_NoRowLost(t *testing.T) {
	rows := []link{
		{Ref: utils.Ptr("a"), Tag: utils.Ptr("1")},
		{Ref: utils.Ptr("b"), Tag: utils.Ptr("2")},
		{Tag: utils.Ptr("3")},
		{Ref: utils.Ptr("a"), Tag: utils.Ptr("4")},
	}

	groups := GroupAggregate(rows, linkRef, linkTag)

	total := 0
	for _, g := range groups {
		total += len(g.Values)
	}
	assert.Equal(t, len(rows), total)
}

func TestGroupAggregate_OrderBy(t *testing.T) {
	rows := []link{
		{Ref: utils.Ptr("t1"), Tag: utils.Ptr("c")},
		{Ref: utils.Ptr("t1"), Tag: utils.Ptr("a")},
		{Ref: utils.Ptr("t1"), Tag: utils.Ptr("b")},
	}

	groups := GroupAggregate(rows, linkRef, linkTag, OrderBy(strings.Compare))

	require.Len(t, groups, 1)
	assert.Equal(t, []string{"a", "b", "c"}, groups[0].Values)
}
