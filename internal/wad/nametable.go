package wad

// Entry is one row of a name-indexed table.
type Entry[T any] struct {
	Name  string
	Value T
}

// NameTable is a name-indexed table that keeps the container's row order.
// Names are expected to be unique; when a name repeats, every row is kept,
// Lookup answers with the first one and Duplicates lists the name.
type NameTable[T any] struct {
	rows  []Entry[T]
	index map[string]int
	dups  []string
}

func newNameTable[T any](names []string, values []T) NameTable[T] {
	t := NameTable[T]{
		rows:  make([]Entry[T], len(names)),
		index: make(map[string]int, len(names)),
	}
	seen := make(map[string]bool)
	for i, name := range names {
		t.rows[i] = Entry[T]{Name: name, Value: values[i]}
		if _, ok := t.index[name]; ok {
			if !seen[name] {
				t.dups = append(t.dups, name)
				seen[name] = true
			}
			continue
		}
		t.index[name] = i
	}
	return t
}

// Len returns the number of rows.
func (t NameTable[T]) Len() int { return len(t.rows) }

// Lookup returns the first row with the given name.
func (t NameTable[T]) Lookup(name string) (T, bool) {
	i, ok := t.index[name]
	if !ok {
		var zero T
		return zero, false
	}
	return t.rows[i].Value, true
}

// Entries returns a copy of all rows in file order.
func (t NameTable[T]) Entries() []Entry[T] {
	out := make([]Entry[T], len(t.rows))
	copy(out, t.rows)
	return out
}

// Names returns the row names in file order.
func (t NameTable[T]) Names() []string {
	out := make([]string, len(t.rows))
	for i, r := range t.rows {
		out[i] = r.Name
	}
	return out
}

// Duplicates returns the names that occur on more than one row.
func (t NameTable[T]) Duplicates() []string {
	out := make([]string, len(t.dups))
	copy(out, t.dups)
	return out
}
