package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"

	"datalens/domain/dataset"
	"datalens/internal/errors"
)

// NumericStats is a describe-style summary of one numeric column
type NumericStats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	P25    float64 `json:"p25"`
	Median float64 `json:"median"`
	P75    float64 `json:"p75"`
	Max    float64 `json:"max"`
}

// ColumnStats is the profile of a single column
type ColumnStats struct {
	Name     string             `json:"name"`
	Type     dataset.ColumnType `json:"type"`
	Missing  int                `json:"missing"`
	Distinct int                `json:"distinct"`
	Numeric  *NumericStats      `json:"numeric,omitempty"`
}

// Summary is the statistical profile of a dataset
type Summary struct {
	Rows    int           `json:"rows"`
	Columns int           `json:"columns"`
	Stats   []ColumnStats `json:"stats"`
}

// Summarize profiles every column of a dataset. Columns are processed
// concurrently; results keep table order.
func Summarize(ctx context.Context, ds *dataset.Dataset) (*Summary, error) {
	summary := &Summary{
		Rows:    ds.RowCount,
		Columns: len(ds.Columns),
		Stats:   make([]ColumnStats, len(ds.Columns)),
	}

	g, _ := errgroup.WithContext(ctx)
	for i := range ds.Columns {
		g.Go(func() error {
			col := &ds.Columns[i]
			cs := ColumnStats{
				Name:     col.Name,
				Type:     col.Type,
				Missing:  col.MissingCount(),
				Distinct: col.DistinctCount(),
			}
			if col.Type == dataset.ColumnNumeric {
				ns, err := describeNumeric(col.Float64s())
				if err != nil {
					return errors.Wrapf(err, "failed to profile column %q", col.Name)
				}
				cs.Numeric = ns
			}
			summary.Stats[i] = cs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return summary, nil
}

func describeNumeric(values []float64) (*NumericStats, error) {
	if len(values) == 0 {
		// A numeric column can still be all-missing after coercion
		return &NumericStats{}, nil
	}

	data := stats.Float64Data(values)

	mean, err := stats.Mean(data)
	if err != nil {
		return nil, err
	}
	stdDev, err := stats.StandardDeviation(data)
	if err != nil {
		return nil, err
	}
	min, err := stats.Min(data)
	if err != nil {
		return nil, err
	}
	max, err := stats.Max(data)
	if err != nil {
		return nil, err
	}
	median, err := stats.Median(data)
	if err != nil {
		return nil, err
	}

	ns := &NumericStats{
		Count:  len(values),
		Mean:   mean,
		StdDev: stdDev,
		Min:    min,
		Median: median,
		Max:    max,
	}

	// Percentile needs at least two observations
	if len(values) > 1 {
		if p25, err := stats.Percentile(data, 25); err == nil {
			ns.P25 = p25
		}
		if p75, err := stats.Percentile(data, 75); err == nil {
			ns.P75 = p75
		}
	} else {
		ns.P25 = values[0]
		ns.P75 = values[0]
	}

	return ns, nil
}

// Describe renders the summary as a plain-text table for prompt context
func (s *Summary) Describe() string {
	var b strings.Builder
	for _, cs := range s.Stats {
		if cs.Numeric == nil || cs.Numeric.Count == 0 {
			continue
		}
		n := cs.Numeric
		fmt.Fprintf(&b, "%s: count=%d mean=%.4g std=%.4g min=%.4g p25=%.4g median=%.4g p75=%.4g max=%.4g\n",
			cs.Name, n.Count, n.Mean, n.StdDev, n.Min, n.P25, n.Median, n.P75, n.Max)
	}
	return strings.TrimRight(b.String(), "\n")
}
