package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"datalens/domain/dataset"
	"datalens/internal/errors"
)

// Bin is one histogram bucket over [Low, High)
type Bin struct {
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
	Count int     `json:"count"`
}

// Histogram is the binned distribution of one numeric column
type Histogram struct {
	Column string `json:"column"`
	Total  int    `json:"total"`
	Bins   []Bin  `json:"bins"`
}

// SturgesBins returns the bin count given by Sturges' rule
func SturgesBins(n int) int {
	if n <= 1 {
		return 1
	}
	return int(math.Ceil(math.Log2(float64(n)))) + 1
}

// HistogramFor bins the non-missing values of a numeric column. A bin
// count of zero selects Sturges' rule.
func HistogramFor(ds *dataset.Dataset, column string, binCount int) (*Histogram, error) {
	col, ok := ds.Column(column)
	if !ok {
		return nil, errors.NotFound("column " + column)
	}
	if col.Type != dataset.ColumnNumeric {
		return nil, errors.InvalidInput("column " + column + " is not numeric")
	}

	values := col.Float64s()
	if len(values) == 0 {
		return nil, errors.InvalidInput("column " + column + " has no numeric values")
	}
	if binCount <= 0 {
		binCount = SturgesBins(len(values))
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	min, max := sorted[0], sorted[len(sorted)-1]
	if min == max {
		// Degenerate distribution collapses to one bucket
		return &Histogram{
			Column: column,
			Total:  len(values),
			Bins:   []Bin{{Low: min, High: max, Count: len(values)}},
		}, nil
	}

	dividers := make([]float64, binCount+1)
	floats.Span(dividers, min, max)
	// stat.Histogram buckets are half-open, nudge the top edge so the
	// maximum lands in the last bucket.
	dividers[len(dividers)-1] = math.Nextafter(max, math.Inf(1))

	counts := stat.Histogram(nil, dividers, sorted, nil)

	bins := make([]Bin, binCount)
	for i := range bins {
		bins[i] = Bin{
			Low:   dividers[i],
			High:  dividers[i+1],
			Count: int(counts[i]),
		}
	}

	return &Histogram{Column: column, Total: len(values), Bins: bins}, nil
}

// CorrelationResult is the Pearson correlation between two numeric columns
type CorrelationResult struct {
	X           string  `json:"x"`
	Y           string  `json:"y"`
	Pearson     float64 `json:"pearson"`
	SampleSize  int     `json:"sample_size"`
	MissingPair int     `json:"missing_pairs"`
}

// Correlation computes the Pearson correlation over rows where both
// columns hold numeric values.
func Correlation(ds *dataset.Dataset, xName, yName string) (*CorrelationResult, error) {
	xCol, ok := ds.Column(xName)
	if !ok {
		return nil, errors.NotFound("column " + xName)
	}
	yCol, ok := ds.Column(yName)
	if !ok {
		return nil, errors.NotFound("column " + yName)
	}
	if xCol.Type != dataset.ColumnNumeric || yCol.Type != dataset.ColumnNumeric {
		return nil, errors.InvalidInput("correlation requires two numeric columns")
	}

	var xs, ys []float64
	dropped := 0
	for i := 0; i < ds.RowCount; i++ {
		xv, yv := xCol.Values[i], yCol.Values[i]
		if xv.Missing || yv.Missing || xv.Numeric == nil || yv.Numeric == nil {
			dropped++
			continue
		}
		xs = append(xs, *xv.Numeric)
		ys = append(ys, *yv.Numeric)
	}
	if len(xs) < 2 {
		return nil, errors.InvalidInput("not enough paired values for correlation")
	}

	return &CorrelationResult{
		X:           xName,
		Y:           yName,
		Pearson:     stat.Correlation(xs, ys, nil),
		SampleSize:  len(xs),
		MissingPair: dropped,
	}, nil
}
