package domain

import "fmt"

// TextColumn is the column holding the texts to clean.
const TextColumn = "text"

// Table is a column-oriented tabular structure with named, equally sized columns.
type Table struct {
	names  []string
	values map[string][]any
	rows   int
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{values: make(map[string][]any)}
}

// NewTextTable creates a single-column table named "text" from the given values.
func NewTextTable(values []any) *Table {
	t := NewTable()
	// A fresh table accepts any length for its first column.
	_ = t.AddColumn(TextColumn, values)
	return t
}

// AddColumn appends a new column, or replaces an existing one in place.
// All columns must have the same number of values.
func (t *Table) AddColumn(name string, values []any) error {
	_, exists := t.values[name]
	replacingOnly := exists && len(t.names) == 1
	if len(t.names) > 0 && !replacingOnly && len(values) != t.rows {
		return fmt.Errorf("%w: column %q has %d values, table has %d rows",
			ErrColumnLength, name, len(values), t.rows)
	}
	if !exists {
		t.names = append(t.names, name)
	}
	t.values[name] = values
	t.rows = len(values)
	return nil
}

// SetColumn is an alias of AddColumn kept for readability at call sites that overwrite.
func (t *Table) SetColumn(name string, values []any) error {
	return t.AddColumn(name, values)
}

// Column returns the values of a column.
func (t *Table) Column(name string) ([]any, bool) {
	v, ok := t.values[name]
	return v, ok
}

// Columns returns the column names in insertion order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return t.rows
}

// Texts returns the text column as strings. Non-string cells are formatted with %v.
func (t *Table) Texts() []string {
	col, ok := t.values[TextColumn]
	if !ok {
		return nil
	}
	out := make([]string, len(col))
	for i, v := range col {
		if s, isString := v.(string); isString {
			out[i] = s
		} else {
			out[i] = fmt.Sprint(v)
		}
	}
	return out
}

// Clone returns a copy of the table whose columns can be modified independently.
func (t *Table) Clone() *Table {
	c := &Table{
		names:  make([]string, len(t.names)),
		values: make(map[string][]any, len(t.values)),
		rows:   t.rows,
	}
	copy(c.names, t.names)
	for name, col := range t.values {
		dup := make([]any, len(col))
		copy(dup, col)
		c.values[name] = dup
	}
	return c
}
