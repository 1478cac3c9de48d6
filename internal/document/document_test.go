package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doc(names ...string) Document {
	var d Document
	for _, n := range names {
		d.Blocks = append(d.Blocks, Block{Name: n})
	}
	return d
}

func names(d Document) []string {
	out := make([]string, len(d.Blocks))
	for i, b := range d.Blocks {
		out[i] = b.Name
	}
	return out
}

func TestNormalizedName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "dyk talk", Block{Name: "DYK talk"}.NormalizedName())
	assert.Equal(t, "article history", Block{Name: "Template:Article history"}.NormalizedName())
	assert.Equal(t, "article history", Block{Name: " template:Article History "}.NormalizedName())
}

func TestApplyIndexesNeverShift(t *testing.T) {
	t.Parallel()

	d := doc("a", "b", "c", "d")

	// Remove an early block and still address later ones by their original
	// snapshot index.
	got := d.Apply([]Edit{
		{Op: OpRemove, Index: 0},
		{Op: OpRename, Index: 2, Name: "c2"},
		{Op: OpRemove, Index: 3},
	})
	assert.Equal(t, []string{"b", "c2"}, names(got))

	// The snapshot itself is untouched.
	assert.Equal(t, []string{"a", "b", "c", "d"}, names(d))
}

func TestApplyReplaceParamsCopies(t *testing.T) {
	t.Parallel()

	d := Document{Blocks: []Block{{Name: "a", Params: []Param{{Key: "k", Value: "old"}}}}}
	params := []Param{{Key: "k", Value: "new"}}
	got := d.Apply([]Edit{{Op: OpReplaceParams, Index: 0, Params: params}})

	params[0].Value = "mutated"
	require.Len(t, got.Blocks[0].Params, 1)
	assert.Equal(t, "new", got.Blocks[0].Params[0].Value)
	assert.Equal(t, "old", d.Blocks[0].Params[0].Value)
}

func TestApplyInsertBefore(t *testing.T) {
	t.Parallel()

	d := doc("banner", "dyk")
	got := d.Apply([]Edit{
		{Op: OpInsertBefore, Index: 0, Name: "Article history", Params: []Param{{Key: "currentstatus", Value: "FA"}}},
		{Op: OpRemove, Index: 1},
	})
	assert.Equal(t, []string{"Article history", "banner"}, names(got))
	assert.Equal(t, "FA", got.Blocks[0].Params[0].Value)
}

func TestApplyInsertBeforeRemovedTarget(t *testing.T) {
	t.Parallel()

	// Insertion anchors to the slot, not to the block's survival.
	d := doc("a", "b")
	got := d.Apply([]Edit{
		{Op: OpRemove, Index: 1},
		{Op: OpInsertBefore, Index: 1, Name: "x"},
	})
	assert.Equal(t, []string{"a", "x"}, names(got))
}

func TestApplyIgnoresOutOfRangeIndexes(t *testing.T) {
	t.Parallel()

	d := doc("a")
	got := d.Apply([]Edit{
		{Op: OpRemove, Index: -1},
		{Op: OpRename, Index: 5, Name: "z"},
	})
	assert.Equal(t, []string{"a"}, names(got))
}

func TestGet(t *testing.T) {
	t.Parallel()

	b := Block{Params: []Param{{Key: "date", Value: " June 3, 2008 "}}}
	v, ok := b.Get("date")
	require.True(t, ok)
	assert.Equal(t, "June 3, 2008", v)

	_, ok = b.Get("oldid")
	assert.False(t, ok)
}
