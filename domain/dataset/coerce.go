package dataset

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"datalens/internal/errors"
)

// CoercionConfig defines the column type inference thresholds
type CoercionConfig struct {
	NumericThreshold   float64 // share of non-missing values that must parse as numbers
	BooleanThreshold   float64 // share of non-missing values that must parse as booleans
	TimestampThreshold float64 // share of non-missing values that must parse as timestamps
}

// DefaultCoercionConfig returns sensible defaults
func DefaultCoercionConfig() CoercionConfig {
	return CoercionConfig{
		NumericThreshold:   0.8,
		BooleanThreshold:   0.9,
		TimestampThreshold: 0.8,
	}
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"2006/01/02",
}

// Build constructs a typed Dataset from a header and raw string rows.
// Rows shorter than the header are padded with missing cells; longer rows
// are truncated to the header width. An empty table is an input error.
func Build(name string, source Source, header []string, rows [][]string, cfg CoercionConfig) (*Dataset, error) {
	if len(header) == 0 {
		return nil, errors.InvalidInput("the data has no header row")
	}
	if len(rows) == 0 {
		return nil, errors.InvalidInput("the data is empty")
	}

	columns := make([]Column, len(header))
	for j, colName := range header {
		colName = strings.TrimSpace(colName)
		if colName == "" {
			colName = "column_" + strconv.Itoa(j+1)
		}
		raw := make([]string, len(rows))
		for i, row := range rows {
			if j < len(row) {
				raw[i] = row[j]
			}
		}
		columns[j] = coerceColumn(colName, raw, cfg)
	}

	return &Dataset{
		ID:       uuid.New(),
		Name:     name,
		Source:   source,
		Columns:  columns,
		RowCount: len(rows),
		LoadedAt: time.Now(),
	}, nil
}

// InferColumnType determines the dominant type of a raw column sample
func InferColumnType(raw []string, cfg CoercionConfig) ColumnType {
	var present, numeric, boolean, timestamp int
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		present++
		if _, ok := parseNumeric(s); ok {
			numeric++
		}
		if _, ok := parseBoolean(s); ok {
			boolean++
		}
		if _, ok := parseTimestamp(s); ok {
			timestamp++
		}
	}
	if present == 0 {
		return ColumnCategorical
	}

	// Boolean wins over numeric so 0/1 flag columns stay boolean only when
	// the stricter threshold holds; numeric is checked first otherwise.
	switch {
	case float64(boolean)/float64(present) >= cfg.BooleanThreshold && boolean > numeric:
		return ColumnBoolean
	case float64(numeric)/float64(present) >= cfg.NumericThreshold:
		return ColumnNumeric
	case float64(timestamp)/float64(present) >= cfg.TimestampThreshold:
		return ColumnTimestamp
	default:
		return ColumnCategorical
	}
}

func coerceColumn(name string, raw []string, cfg CoercionConfig) Column {
	colType := InferColumnType(raw, cfg)
	values := make([]Value, len(raw))
	for i, s := range raw {
		values[i] = coerceValue(s, colType)
	}
	return Column{Name: name, Type: colType, Values: values}
}

func coerceValue(s string, colType ColumnType) Value {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Value{Missing: true}
	}
	v := Value{Raw: trimmed}
	switch colType {
	case ColumnNumeric:
		if f, ok := parseNumeric(trimmed); ok {
			v.Numeric = &f
		} else {
			v.Missing = true
		}
	case ColumnBoolean:
		if b, ok := parseBoolean(trimmed); ok {
			v.Boolean = &b
		} else {
			v.Missing = true
		}
	case ColumnTimestamp:
		if ts, ok := parseTimestamp(trimmed); ok {
			v.Timestamp = &ts
		} else {
			v.Missing = true
		}
	}
	return v
}

func parseNumeric(s string) (float64, bool) {
	// Tolerate thousands separators and currency/percent decoration
	cleaned := strings.NewReplacer(",", "", "$", "", "%", "").Replace(s)
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func parseBoolean(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "true", "yes", "y":
		return true, true
	case "false", "no", "n":
		return false, true
	default:
		return false, false
	}
}

func parseTimestamp(s string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
