package pipeline

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/alexiusacademia/vivrisk/internal/dataset"
)

// FillValues records what the cleaner put into missing cells, per column
type FillValues struct {
	Medians map[string]float64 `json:"medians" yaml:"medians"`
	Modes   map[string]string  `json:"modes" yaml:"modes"`
}

// Clean coerces the numeric columns, fills missing numeric cells with the column
// median and missing categorical cells with the column mode, then drops exact
// duplicate rows. The input table is not modified.
func Clean(raw *dataset.Table) (*dataset.Table, FillValues) {
	data := raw.Clone()
	schema := ResolveSchema(data)
	fills := FillValues{
		Medians: make(map[string]float64, len(schema.Numeric)),
		Modes:   make(map[string]string, len(schema.Categorical)),
	}

	// Numeric columns: coerce, then median-fill each column independently
	for _, name := range schema.Numeric {
		col := coerceNumeric(data.Column(name))
		m := median(observed(col.Number))
		fills.Medians[name] = m
		fillNumber(col, m)
		data.SetColumn(col)
	}

	// Categorical columns: mode-fill
	for _, name := range schema.Categorical {
		col := data.Column(name)
		m := mode(col)
		fills.Modes[name] = m
		fillText(col, m)
	}

	return data.DropDuplicates(), fills
}

// applyFills coerces and fills a table with previously recorded fill values.
// Columns without a recorded value fall back to their own median or mode.
func applyFills(raw *dataset.Table, fills FillValues) *dataset.Table {
	data := raw.Clone()
	schema := ResolveSchema(data)

	for _, name := range schema.Numeric {
		col := coerceNumeric(data.Column(name))
		m, ok := fills.Medians[name]
		if !ok {
			m = median(observed(col.Number))
		}
		fillNumber(col, m)
		data.SetColumn(col)
	}

	for _, name := range schema.Categorical {
		col := data.Column(name)
		m, ok := fills.Modes[name]
		if !ok {
			m = mode(col)
		}
		fillText(col, m)
	}

	return data
}

// coerceNumeric converts a column to numbers; unparsable cells become missing
func coerceNumeric(col *dataset.Column) *dataset.Column {
	if col.Kind == dataset.KindNumber {
		return &dataset.Column{Name: col.Name, Kind: dataset.KindNumber, Number: append([]float64(nil), col.Number...)}
	}

	out := &dataset.Column{Name: col.Name, Kind: dataset.KindNumber, Number: make([]float64, len(col.Text))}
	for i, s := range col.Text {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			v = math.NaN()
		}
		out.Number[i] = v
	}
	return out
}

func fillNumber(col *dataset.Column, v float64) {
	for i, x := range col.Number {
		if math.IsNaN(x) {
			col.Number[i] = v
		}
	}
}

func fillText(col *dataset.Column, v string) {
	for i, x := range col.Text {
		if x == "" {
			col.Text[i] = v
		}
	}
}

func observed(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, x := range xs {
		if !math.IsNaN(x) {
			out = append(out, x)
		}
	}
	return out
}

// median of xs; 0 when there is nothing to take the median of
func median(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	cp := append([]float64(nil), xs...)
	sort.Float64s(cp)
	mid := len(cp) / 2
	if len(cp)%2 == 1 {
		return cp[mid]
	}
	return 0.5 * (cp[mid-1] + cp[mid])
}

// mode returns the most frequent non-missing value; ties go to the smallest
// value in sort order, and a column with no values yields UnknownCategory
func mode(col *dataset.Column) string {
	counts := make(map[string]int)
	for i := 0; i < col.Len(); i++ {
		if !col.IsMissing(i) {
			counts[col.Cell(i)]++
		}
	}
	if len(counts) == 0 {
		return UnknownCategory
	}

	values := make([]string, 0, len(counts))
	for v := range counts {
		values = append(values, v)
	}
	sort.Strings(values)

	best := values[0]
	for _, v := range values[1:] {
		if counts[v] > counts[best] {
			best = v
		}
	}
	return best
}
