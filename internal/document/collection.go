package document

import (
	"encoding/json"
	"os"
)

// Entry is a record stored under its key.
type Entry struct {
	Key  string
	Data *ExtractedData
}

// Collection is a keyed set of records that remembers insertion order.
// Matching depends on that order, so a plain map is never enough here.
type Collection struct {
	keys  []string
	items map[string]*ExtractedData
}

func NewCollection() *Collection {
	return &Collection{items: make(map[string]*ExtractedData)}
}

// Set stores data under key. Re-setting an existing key replaces the record
// but keeps its original position.
func (c *Collection) Set(key string, data *ExtractedData) {
	if c.items == nil {
		c.items = make(map[string]*ExtractedData)
	}
	if _, ok := c.items[key]; !ok {
		c.keys = append(c.keys, key)
	}
	c.items[key] = data
}

func (c *Collection) Get(key string) (*ExtractedData, bool) {
	if c == nil {
		return nil, false
	}
	data, ok := c.items[key]
	return data, ok
}

func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.keys)
}

func (c *Collection) Keys() []string {
	if c == nil {
		return nil
	}
	keys := make([]string, len(c.keys))
	copy(keys, c.keys)
	return keys
}

// First returns the earliest inserted entry.
func (c *Collection) First() (Entry, bool) {
	if c.Len() == 0 {
		return Entry{}, false
	}
	key := c.keys[0]
	return Entry{Key: key, Data: c.items[key]}, true
}

// Each calls fn for every entry in insertion order until fn returns false.
func (c *Collection) Each(fn func(key string, data *ExtractedData) bool) {
	if c == nil {
		return
	}
	for _, key := range c.keys {
		if !fn(key, c.items[key]) {
			return
		}
	}
}

// Entries returns a snapshot of the collection in insertion order.
func (c *Collection) Entries() []Entry {
	entries := make([]Entry, 0, c.Len())
	c.Each(func(key string, data *ExtractedData) bool {
		entries = append(entries, Entry{Key: key, Data: data})
		return true
	})
	return entries
}

// DumpToTmpFile writes the collection as an ordered JSON array and returns the file name.
func (c *Collection) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "documents_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	type dumped struct {
		Key  string         `json:"key"`
		Data *ExtractedData `json:"data"`
	}

	out := make([]dumped, 0, c.Len())
	for _, entry := range c.Entries() {
		out = append(out, dumped{Key: entry.Key, Data: entry.Data})
	}

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return "", err
	}
	return file.Name(), nil
}
