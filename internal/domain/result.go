package domain

import "fmt"

// Row maps column names to scalar values (string, float64, bool, nil, or
// time.Time as produced by the query executor).
type Row map[string]interface{}

// ResultSet is the in-memory tabular value produced by one query execution.
// Row order is the order returned by the executor and is preserved through
// delivery. A ResultSet is owned by the single task execution that created it.
type ResultSet struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// NewResultSet creates an empty result set with the given column order.
func NewResultSet(columns []string) (*ResultSet, error) {
	seen := make(map[string]bool, len(columns))
	for _, c := range columns {
		if c == "" {
			return nil, fmt.Errorf("blank column name")
		}
		if seen[c] {
			return nil, fmt.Errorf("duplicate column %q", c)
		}
		seen[c] = true
	}
	return &ResultSet{Columns: columns, Rows: []Row{}}, nil
}

// Append adds a row, enforcing that it carries exactly the header's columns.
func (rs *ResultSet) Append(row Row) error {
	if len(row) != len(rs.Columns) {
		return fmt.Errorf("row has %d values, header has %d columns", len(row), len(rs.Columns))
	}
	for _, c := range rs.Columns {
		if _, ok := row[c]; !ok {
			return fmt.Errorf("row is missing column %q", c)
		}
	}
	rs.Rows = append(rs.Rows, row)
	return nil
}

// RowCount returns the number of rows. Zero rows is a valid, non-error state.
func (rs *ResultSet) RowCount() int {
	return len(rs.Rows)
}
