package dataset

import (
	"time"

	"github.com/google/uuid"
)

// Source identifies where a dataset was loaded from
type Source string

const (
	SourceUpload Source = "upload"
	SourceSheet  Source = "sheet"
)

// ColumnType is the inferred storage type of a column
type ColumnType string

const (
	ColumnNumeric     ColumnType = "numeric"
	ColumnBoolean     ColumnType = "boolean"
	ColumnTimestamp   ColumnType = "timestamp"
	ColumnCategorical ColumnType = "categorical"
)

// Value is a single typed cell with deterministic coercion
type Value struct {
	Raw       string     `json:"raw"`
	Numeric   *float64   `json:"numeric,omitempty"`
	Boolean   *bool      `json:"boolean,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
	Missing   bool       `json:"missing"`
}

// Column holds one named column and its typed cells
type Column struct {
	Name   string     `json:"name"`
	Type   ColumnType `json:"type"`
	Values []Value    `json:"values"`
}

// Dataset is a fully typed in-memory table
type Dataset struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Source   Source    `json:"source"`
	Columns  []Column  `json:"columns"`
	RowCount int       `json:"row_count"`
	LoadedAt time.Time `json:"loaded_at"`
}

// ColumnNames returns the column names in table order
func (d *Dataset) ColumnNames() []string {
	names := make([]string, len(d.Columns))
	for i, col := range d.Columns {
		names[i] = col.Name
	}
	return names
}

// Column looks up a column by name
func (d *Dataset) Column(name string) (*Column, bool) {
	for i := range d.Columns {
		if d.Columns[i].Name == name {
			return &d.Columns[i], true
		}
	}
	return nil, false
}

// NumericColumns returns the names of all numeric columns in table order
func (d *Dataset) NumericColumns() []string {
	var names []string
	for _, col := range d.Columns {
		if col.Type == ColumnNumeric {
			names = append(names, col.Name)
		}
	}
	return names
}

// PreviewRows returns up to n raw rows for display
func (d *Dataset) PreviewRows(n int) [][]string {
	if n > d.RowCount {
		n = d.RowCount
	}
	rows := make([][]string, n)
	for i := 0; i < n; i++ {
		row := make([]string, len(d.Columns))
		for j, col := range d.Columns {
			if !col.Values[i].Missing {
				row[j] = col.Values[i].Raw
			}
		}
		rows[i] = row
	}
	return rows
}

// Float64s returns the non-missing numeric values of a column
func (c *Column) Float64s() []float64 {
	var out []float64
	for _, v := range c.Values {
		if v.Numeric != nil && !v.Missing {
			out = append(out, *v.Numeric)
		}
	}
	return out
}

// MissingCount returns the number of missing cells in a column
func (c *Column) MissingCount() int {
	count := 0
	for _, v := range c.Values {
		if v.Missing {
			count++
		}
	}
	return count
}

// DistinctCount returns the number of distinct non-missing raw values
func (c *Column) DistinctCount() int {
	seen := make(map[string]struct{})
	for _, v := range c.Values {
		if !v.Missing {
			seen[v.Raw] = struct{}{}
		}
	}
	return len(seen)
}
