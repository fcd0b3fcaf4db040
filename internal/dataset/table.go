package dataset

import (
	"math"
	"strconv"
	"strings"
)

// Kind identifies how a column stores its cells
type Kind int

const (
	// KindText columns hold raw strings, "" marks a missing cell
	KindText Kind = iota
	// KindNumber columns hold float64 values, NaN marks a missing cell
	KindNumber
)

// Column is a single named column of a Table
type Column struct {
	Name   string
	Kind   Kind
	Text   []string  // KindText only
	Number []float64 // KindNumber only
}

// Len returns the number of cells in the column
func (c *Column) Len() int {
	if c.Kind == KindNumber {
		return len(c.Number)
	}
	return len(c.Text)
}

// IsMissing reports whether the cell at row i has no value
func (c *Column) IsMissing(i int) bool {
	if c.Kind == KindNumber {
		return math.IsNaN(c.Number[i])
	}
	return c.Text[i] == ""
}

// MissingCount returns the number of missing cells
func (c *Column) MissingCount() int {
	n := 0
	for i := 0; i < c.Len(); i++ {
		if c.IsMissing(i) {
			n++
		}
	}
	return n
}

// Cell renders the cell at row i as a string ("" when missing)
func (c *Column) Cell(i int) string {
	if c.Kind == KindNumber {
		v := c.Number[i]
		if math.IsNaN(v) {
			return ""
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return c.Text[i]
}

func (c *Column) clone() *Column {
	cp := &Column{Name: c.Name, Kind: c.Kind}
	if c.Text != nil {
		cp.Text = append([]string(nil), c.Text...)
	}
	if c.Number != nil {
		cp.Number = append([]float64(nil), c.Number...)
	}
	return cp
}

// Table is an in-memory, column-oriented table of bridge records
type Table struct {
	columns []*Column
	index   map[string]int
	rows    int
}

// NewTable builds a text table from a header and its records.
// Short records are padded with missing cells, extra cells are dropped.
func NewTable(header []string, records [][]string) *Table {
	t := &Table{index: make(map[string]int, len(header)), rows: len(records)}

	for j, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		col := &Column{Name: name, Kind: KindText, Text: make([]string, len(records))}
		for i, rec := range records {
			if j < len(rec) {
				col.Text[i] = normalizeCell(rec[j])
			}
		}
		if _, dup := t.index[name]; dup {
			continue
		}
		t.index[name] = len(t.columns)
		t.columns = append(t.columns, col)
	}

	return t
}

// missingTokens are the cell spellings read as "no value"
var missingTokens = map[string]bool{
	"":      true,
	"NA":    true,
	"N/A":   true,
	"n/a":   true,
	"NaN":   true,
	"nan":   true,
	"NULL":  true,
	"null":  true,
	"<nil>": true,
	"#N/A":  true,
}

func normalizeCell(s string) string {
	s = strings.TrimSpace(s)
	if missingTokens[s] {
		return ""
	}
	return s
}

// Len returns the number of rows
func (t *Table) Len() int {
	return t.rows
}

// Names returns the column names in table order
func (t *Table) Names() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// Has reports whether the table has a column with the given name
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column returns the named column, or nil when absent
func (t *Table) Column(name string) *Column {
	i, ok := t.index[name]
	if !ok {
		return nil
	}
	return t.columns[i]
}

// SetColumn replaces (or appends) a column. The column length must match the table.
func (t *Table) SetColumn(col *Column) {
	if i, ok := t.index[col.Name]; ok {
		t.columns[i] = col
		return
	}
	t.index[col.Name] = len(t.columns)
	t.columns = append(t.columns, col)
}

// Clone returns a deep copy of the table
func (t *Table) Clone() *Table {
	cp := &Table{
		columns: make([]*Column, len(t.columns)),
		index:   make(map[string]int, len(t.index)),
		rows:    t.rows,
	}
	for i, c := range t.columns {
		cp.columns[i] = c.clone()
		cp.index[c.Name] = i
	}
	return cp
}

// Row renders row i as strings in column order
func (t *Table) Row(i int) []string {
	row := make([]string, len(t.columns))
	for j, c := range t.columns {
		row[j] = c.Cell(i)
	}
	return row
}

// Records returns the header followed by every row rendered as strings
func (t *Table) Records() [][]string {
	records := make([][]string, 0, t.rows+1)
	records = append(records, t.Names())
	for i := 0; i < t.rows; i++ {
		records = append(records, t.Row(i))
	}
	return records
}

// DropDuplicates returns a table without exact-duplicate rows, keeping the first occurrence
func (t *Table) DropDuplicates() *Table {
	seen := make(map[string]bool, t.rows)
	keep := make([]int, 0, t.rows)

	for i := 0; i < t.rows; i++ {
		key := t.rowKey(i)
		if seen[key] {
			continue
		}
		seen[key] = true
		keep = append(keep, i)
	}

	return t.selectRows(keep)
}

// rowKey encodes a row for equality; missing cells compare equal to each other
func (t *Table) rowKey(i int) string {
	var sb strings.Builder
	for _, c := range t.columns {
		if c.IsMissing(i) {
			sb.WriteString("\x00")
		} else if c.Kind == KindNumber {
			sb.WriteString(strconv.FormatFloat(c.Number[i], 'g', -1, 64))
		} else {
			sb.WriteString(c.Text[i])
		}
		sb.WriteByte('\x1f')
	}
	return sb.String()
}

func (t *Table) selectRows(rows []int) *Table {
	out := &Table{
		columns: make([]*Column, len(t.columns)),
		index:   make(map[string]int, len(t.index)),
		rows:    len(rows),
	}
	for j, c := range t.columns {
		nc := &Column{Name: c.Name, Kind: c.Kind}
		if c.Kind == KindNumber {
			nc.Number = make([]float64, len(rows))
			for k, i := range rows {
				nc.Number[k] = c.Number[i]
			}
		} else {
			nc.Text = make([]string, len(rows))
			for k, i := range rows {
				nc.Text[k] = c.Text[i]
			}
		}
		out.columns[j] = nc
		out.index[c.Name] = j
	}
	return out
}
