package document

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollection_KeepsInsertionOrder(t *testing.T) {
	c := NewCollection()
	c.Set("zeta", &ExtractedData{DocumentNumber: "Z"})
	c.Set("alpha", &ExtractedData{DocumentNumber: "A"})
	c.Set("mid", &ExtractedData{DocumentNumber: "M"})

	assert.Equal(t, []string{"zeta", "alpha", "mid"}, c.Keys())
	assert.Equal(t, 3, c.Len())

	first, ok := c.First()
	require.True(t, ok)
	assert.Equal(t, "zeta", first.Key)
	assert.Equal(t, "Z", first.Data.DocumentNumber)
}

func TestCollection_ResetKeepsPosition(t *testing.T) {
	c := NewCollection()
	c.Set("a", &ExtractedData{Vendor: "old"})
	c.Set("b", &ExtractedData{Vendor: "b"})
	c.Set("a", &ExtractedData{Vendor: "new"})

	assert.Equal(t, []string{"a", "b"}, c.Keys())
	got, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, "new", got.Vendor)
}

func TestCollection_EachStopsEarly(t *testing.T) {
	c := NewCollection()
	c.Set("1", &ExtractedData{})
	c.Set("2", &ExtractedData{})
	c.Set("3", &ExtractedData{})

	var visited []string
	c.Each(func(key string, _ *ExtractedData) bool {
		visited = append(visited, key)
		return key != "2"
	})

	assert.Equal(t, []string{"1", "2"}, visited)
}

func TestCollection_EmptyAndNil(t *testing.T) {
	var nilCollection *Collection
	assert.Equal(t, 0, nilCollection.Len())
	_, ok := nilCollection.First()
	assert.False(t, ok)

	var zero Collection
	zero.Set("k", &ExtractedData{})
	assert.Equal(t, 1, zero.Len())
}

func TestCollection_KeysIsACopy(t *testing.T) {
	c := NewCollection()
	c.Set("a", &ExtractedData{})
	keys := c.Keys()
	keys[0] = "mutated"

	assert.Equal(t, []string{"a"}, c.Keys())
}

func TestCollection_DumpToTmpFile(t *testing.T) {
	c := NewCollection()
	c.Set("inv-2.pdf", &ExtractedData{DocumentNumber: "INV-2", Total: 20})
	c.Set("inv-1.pdf", &ExtractedData{DocumentNumber: "INV-1", Total: 10})

	name, err := c.DumpToTmpFile()
	require.NoError(t, err)
	defer os.Remove(name)

	raw, err := os.ReadFile(name)
	require.NoError(t, err)

	var dumped []struct {
		Key  string        `json:"key"`
		Data ExtractedData `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &dumped))
	require.Len(t, dumped, 2)
	assert.Equal(t, "inv-2.pdf", dumped[0].Key)
	assert.Equal(t, "INV-1", dumped[1].Data.DocumentNumber)
}
