package encoder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"m4o.io/pbf/v2/model"
)

func TestCalcIDs(t *testing.T) {
	tags := map[string]string{"a": "b", "c": "d", "e": "f"}
	expectedKeyIDs := []uint32{1, 3, 5}
	expectedTagIDs := []uint32{2, 4, 6}

	strings := NewStrings()
	strings.Add("a")
	strings.Add("b")
	strings.Add("c")
	strings.Add("d")
	strings.Add("e")
	strings.Add("f")

	keyIDs, tagIDs := calcTagIDs(tags, strings.CalcTable())

	assert.Equal(t, expectedKeyIDs, keyIDs)
	assert.Equal(t, expectedTagIDs, tagIDs)
}

func TestFromTimestamp(t *testing.T) {
	ts, _ := time.Parse(time.RFC3339, "2022-02-13T20:40:22Z")

	assert.Equal(t, int64(1644784822), fromTimestamp(DateGranularityMs, ts))
	assert.Equal(t, int64(1644784822), fromTimestamp(DateGranularityMs, ts.Local()))
}

// TestStringTableDedupAcrossWays checks that two ways sharing a tag key
// dedup that key to a single string table entry whose usage count (2, one
// per way) outranks either way's single-use value, sorting it ahead in the
// finalized table.
func TestStringTableDedupAcrossWays(t *testing.T) {
	ways := []*model.Way{
		{ID: 42, NodeIDs: []model.ID{1, 5}, Tags: map[string]string{"abc": "def"}},
		{ID: 69, NodeIDs: []model.ID{1}, Tags: map[string]string{"abc": "xyz"}},
	}

	entities := make([]model.Entity, len(ways))
	for i, w := range ways {
		entities[i] = w
	}

	bc := newBlockContext(entities, DefaultBlockConfig)

	table := bc.table.AsArray()

	assert.Equal(t, "", table[0])
	assert.Contains(t, table, "abc")
	assert.Contains(t, table, "def")
	assert.Contains(t, table, "xyz")

	abcIdx := bc.table.IndexOf("abc")
	defIdx := bc.table.IndexOf("def")
	xyzIdx := bc.table.IndexOf("xyz")
	assert.Less(t, abcIdx, defIdx, "abc is used twice (once per way), def once, so abc must sort first")
	assert.Less(t, abcIdx, xyzIdx, "abc is used twice (once per way), xyz once, so abc must sort first")

	block := bc.extractPrimitiveBlock()
	ways0 := block.Primitivegroup[0].Ways
	require.Len(t, ways0, 2)
	assert.Equal(t, []uint32{uint32(abcIdx)}, ways0[0].Keys)
	assert.Equal(t, []uint32{uint32(defIdx)}, ways0[0].Vals)
	assert.Equal(t, []uint32{uint32(abcIdx)}, ways0[1].Keys)
	assert.Equal(t, []uint32{uint32(xyzIdx)}, ways0[1].Vals)
}
