package frequency

import "sort"

// Entry is a single key and its occurrence count.
type Entry struct {
	// Key is the counted word or section title.
	Key string `json:"key"`

	// Count is the number of times Key was added.
	Count int `json:"count"`
}

// Table counts occurrences of string keys.
// The zero value is not usable; create tables with NewTable.
type Table struct {
	// index maps a key to its position in entries.
	index map[string]int

	// entries holds counts in first-insertion order.
	entries []Entry

	// total is the sum of all counts.
	total int
}

// NewTable returns an empty Table.
func NewTable() *Table {
	return &Table{
		index:   make(map[string]int),
		entries: make([]Entry, 0),
	}
}

// Add increments the count of key by one.
func (t *Table) Add(key string) {
	t.AddCount(key, 1)
}

// AddCount increments the count of key by n.
// A key seen for the first time keeps its position even if n is zero.
func (t *Table) AddCount(key string, n int) {
	i, ok := t.index[key]
	if !ok {
		t.index[key] = len(t.entries)
		t.entries = append(t.entries, Entry{Key: key, Count: n})
		t.total += n
		return
	}
	t.entries[i].Count += n
	t.total += n
}

// Update adds one occurrence for every key, in order.
func (t *Table) Update(keys ...string) {
	for _, key := range keys {
		t.Add(key)
	}
}

// Count returns the count of key, or zero if it was never added.
func (t *Table) Count(key string) int {
	i, ok := t.index[key]
	if !ok {
		return 0
	}
	return t.entries[i].Count
}

// Len returns the number of distinct keys.
func (t *Table) Len() int {
	return len(t.entries)
}

// Total returns the sum of all counts.
func (t *Table) Total() int {
	return t.total
}

// Entries returns a copy of all entries in first-insertion order.
func (t *Table) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// MostCommon returns the n entries with the highest counts, highest first.
// Entries with equal counts keep their first-insertion order.
// If n <= 0 or n exceeds the number of keys, all entries are returned.
func (t *Table) MostCommon(n int) []Entry {
	ranked := t.Entries()
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})

	if n <= 0 || n >= len(ranked) {
		return ranked
	}
	return ranked[:n]
}
