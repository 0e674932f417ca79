// Package marketdata holds the date-indexed price table consumed by the
// backtester and the CSV loader that produces it.
package marketdata

import (
	"fmt"
	"time"
)

// Table is an immutable tabular price series: one row per date, one numeric
// column per asset. Dates are strictly increasing.
type Table struct {
	dates   []time.Time
	columns []string
	values  [][]float64 // rows × columns
}

// NewTable validates and wraps price data. values must be rectangular with
// one row per date and one column per name; dates must be strictly
// increasing.
func NewTable(dates []time.Time, columns []string, values [][]float64) (*Table, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("price table needs at least one column")
	}
	if len(dates) != len(values) {
		return nil, fmt.Errorf("price table has %d dates but %d rows", len(dates), len(values))
	}
	for i, row := range values {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("price table row %d has %d values, want %d", i, len(row), len(columns))
		}
	}
	for i := 1; i < len(dates); i++ {
		if !dates[i].After(dates[i-1]) {
			return nil, fmt.Errorf("price table dates must be strictly increasing: %s >= %s",
				dates[i-1].Format("2006-01-02"), dates[i].Format("2006-01-02"))
		}
	}

	seen := make(map[string]bool, len(columns))
	for _, name := range columns {
		if name == "" {
			return nil, fmt.Errorf("price table column name must not be empty")
		}
		if seen[name] {
			return nil, fmt.Errorf("duplicate price table column %q", name)
		}
		seen[name] = true
	}

	return &Table{dates: dates, columns: columns, values: values}, nil
}

// NumRows returns the number of dates.
func (t *Table) NumRows() int { return len(t.dates) }

// Dates returns the date index (shared slice; treat as read-only).
func (t *Table) Dates() []time.Time { return t.dates }

// Columns returns the column names (shared slice; treat as read-only).
func (t *Table) Columns() []string { return t.columns }

// Row returns the values of one row (shared slice; treat as read-only).
func (t *Table) Row(i int) []float64 { return t.values[i] }

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.columns {
		if c == name {
			return true
		}
	}
	return false
}

// Select returns a new table restricted to the named columns, in the given
// order. Missing columns are an error naming every absent asset.
func (t *Table) Select(names []string) (*Table, error) {
	indices := make([]int, 0, len(names))
	var missing []string
	for _, name := range names {
		found := -1
		for j, c := range t.columns {
			if c == name {
				found = j
				break
			}
		}
		if found < 0 {
			missing = append(missing, name)
			continue
		}
		indices = append(indices, found)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("price data missing assets: %v", missing)
	}

	values := make([][]float64, len(t.values))
	for i, row := range t.values {
		selected := make([]float64, len(indices))
		for j, idx := range indices {
			selected[j] = row[idx]
		}
		values[i] = selected
	}
	cols := make([]string, len(names))
	copy(cols, names)
	return &Table{dates: t.dates, columns: cols, values: values}, nil
}

// SimpleReturns computes per-period simple returns (P1-P0)/P0. The first
// (undefined) row is dropped: row i corresponds to dates[i+1].
func (t *Table) SimpleReturns() [][]float64 {
	if len(t.values) < 2 {
		return nil
	}
	out := make([][]float64, len(t.values)-1)
	for i := 1; i < len(t.values); i++ {
		row := make([]float64, len(t.columns))
		for j := range row {
			prev := t.values[i-1][j]
			if prev != 0 {
				row[j] = (t.values[i][j] - prev) / prev
			}
		}
		out[i-1] = row
	}
	return out
}
