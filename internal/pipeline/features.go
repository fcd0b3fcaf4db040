package pipeline

import (
	"math"
	"sort"

	"github.com/alexiusacademia/vivrisk/internal/dataset"
	"gonum.org/v1/gonum/mat"
)

// FeatureMatrix is a dense row-per-record matrix with named columns
type FeatureMatrix struct {
	Columns []string
	Data    *mat.Dense
}

// Rows returns the number of records
func (m *FeatureMatrix) Rows() int {
	r, _ := m.Data.Dims()
	return r
}

// Cols returns the number of features
func (m *FeatureMatrix) Cols() int {
	return len(m.Columns)
}

// Column returns a copy of the named feature column, or nil when absent
func (m *FeatureMatrix) Column(name string) []float64 {
	for j, c := range m.Columns {
		if c == name {
			return mat.Col(nil, j, m.Data)
		}
	}
	return nil
}

// Row returns a copy of row i
func (m *FeatureMatrix) Row(i int) []float64 {
	return mat.Row(nil, i, m.Data)
}

// Layout fixes the feature columns and their order for a dataset. The same
// layout is reused for train, test and inference inputs.
type Layout struct {
	Columns        []string `json:"columns" yaml:"columns"`
	Base           []string `json:"base" yaml:"base"`
	StructureTypes []string `json:"structure_types,omitempty" yaml:"structure_types,omitempty"`
	Mitigation     bool     `json:"mitigation" yaml:"mitigation"`
	SpanRatio      bool     `json:"span_ratio" yaml:"span_ratio"`
	FreqRatio      bool     `json:"freq_ratio" yaml:"freq_ratio"`
}

// NewLayout derives the feature layout from a cleaned table
func NewLayout(t *dataset.Table) *Layout {
	schema := ResolveSchema(t)
	l := &Layout{
		Base:       append([]string(nil), schema.Base...),
		Mitigation: schema.Mitigation,
		SpanRatio:  schema.SpanRatio,
		FreqRatio:  schema.FreqRatio,
	}
	l.Columns = append(l.Columns, l.Base...)

	// One indicator column per distinct structural type, sorted
	if schema.StructureType {
		l.StructureTypes = distinct(t.Column(ColStructuralType))
		for _, v := range l.StructureTypes {
			l.Columns = append(l.Columns, StructurePrefix+v)
		}
	}

	if l.Mitigation {
		l.Columns = append(l.Columns, FeatureMitigated)
	}
	if l.SpanRatio {
		l.Columns = append(l.Columns, FeatureSpanRatio)
	}
	if l.FreqRatio {
		l.Columns = append(l.Columns, FeatureFreqRatio)
	}

	return l
}

// Build assembles the feature matrix for a cleaned table using this layout.
// Columns the table lacks are 0, and any residual missing value is filled with 0.
// With strict set, a zero ratio denominator is an error; otherwise the
// non-finite quotient is kept.
func (l *Layout) Build(t *dataset.Table, strict bool) (*FeatureMatrix, error) {
	rows := t.Len()
	if rows == 0 || len(l.Columns) == 0 {
		return nil, &ArgumentError{msg: "engineer features: table has no rows or no feature columns"}
	}

	data := mat.NewDense(rows, len(l.Columns), nil)
	j := 0

	for _, name := range l.Base {
		data.SetCol(j, numbers(t, name))
		j++
	}

	if len(l.StructureTypes) > 0 {
		types := texts(t, ColStructuralType)
		for _, v := range l.StructureTypes {
			col := make([]float64, rows)
			for i, s := range types {
				if s == v {
					col[i] = 1
				}
			}
			data.SetCol(j, col)
			j++
		}
	}

	if l.Mitigation {
		col := make([]float64, rows)
		if t.Has(ColMitigation) {
			for i, s := range texts(t, ColMitigation) {
				if s != NoMitigation {
					col[i] = 1
				}
			}
		}
		data.SetCol(j, col)
		j++
	}

	if l.SpanRatio {
		col, err := ratio(FeatureSpanRatio, numbers(t, ColSpan), numbers(t, ColLength), strict)
		if err != nil {
			return nil, err
		}
		data.SetCol(j, col)
		j++
	}

	if l.FreqRatio {
		col, err := ratio(FeatureFreqRatio, numbers(t, ColSecondModeFrequency), numbers(t, ColFirstModeFrequency), strict)
		if err != nil {
			return nil, err
		}
		data.SetCol(j, col)
		j++
	}

	// Residual missing values
	data.Apply(func(_, _ int, v float64) float64 {
		if math.IsNaN(v) {
			return 0
		}
		return v
	}, data)

	return &FeatureMatrix{Columns: append([]string(nil), l.Columns...), Data: data}, nil
}

func ratio(name string, num, den []float64, strict bool) ([]float64, error) {
	out := make([]float64, len(num))
	for i := range num {
		if strict && den[i] == 0 {
			return nil, &FeatureValueError{Feature: name, Row: i}
		}
		out[i] = num[i] / den[i]
	}
	return out, nil
}

// numbers returns a numeric view of a column; absent columns are NaN
func numbers(t *dataset.Table, name string) []float64 {
	col := t.Column(name)
	if col == nil {
		out := make([]float64, t.Len())
		for i := range out {
			out[i] = math.NaN()
		}
		return out
	}
	return coerceNumeric(col).Number
}

// texts returns a text view of a column; absent columns are empty
func texts(t *dataset.Table, name string) []string {
	col := t.Column(name)
	out := make([]string, t.Len())
	if col == nil {
		return out
	}
	for i := range out {
		out[i] = col.Cell(i)
	}
	return out
}

func distinct(col *dataset.Column) []string {
	seen := make(map[string]bool)
	var out []string
	for i := 0; i < col.Len(); i++ {
		if col.IsMissing(i) {
			continue
		}
		v := col.Cell(i)
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

// TargetSet holds the per-record prediction targets
type TargetSet struct {
	Amplitude  []float64 `json:"amplitude" yaml:"amplitude"`
	Occurrence []string  `json:"occurrence,omitempty" yaml:"occurrence,omitempty"`   // nil when the column is absent
	RiskLevel  []string  `json:"risk_level,omitempty" yaml:"risk_level,omitempty"` // nil when the column is absent
}

// NewTargetSet extracts targets from a cleaned table. It returns nil when the
// amplitude column is absent.
func NewTargetSet(t *dataset.Table) *TargetSet {
	schema := ResolveSchema(t)
	if !schema.Amplitude {
		return nil
	}

	ts := &TargetSet{Amplitude: numbers(t, ColAmplitude)}
	if schema.Occurrence {
		ts.Occurrence = texts(t, ColVortexOccurrence)
	}
	if schema.RiskLevel {
		ts.RiskLevel = texts(t, ColRiskLevel)
	}
	return ts
}

// Len returns the number of records
func (ts *TargetSet) Len() int {
	return len(ts.Amplitude)
}

// HasOccurrence reports whether occurrence labels are available
func (ts *TargetSet) HasOccurrence() bool {
	return ts.Occurrence != nil
}

// HasRiskLevel reports whether risk-level labels are available
func (ts *TargetSet) HasRiskLevel() bool {
	return ts.RiskLevel != nil
}

// EncodeOccurrence label-encodes the occurrence target
func (ts *TargetSet) EncodeOccurrence() ([]string, []int) {
	return EncodeLabels(ts.Occurrence)
}

// EncodeRiskLevel label-encodes the risk-level target
func (ts *TargetSet) EncodeRiskLevel() ([]string, []int) {
	return EncodeLabels(ts.RiskLevel)
}

func (ts *TargetSet) subset(idx []int) *TargetSet {
	out := &TargetSet{Amplitude: make([]float64, len(idx))}
	for k, i := range idx {
		out.Amplitude[k] = ts.Amplitude[i]
	}
	if ts.Occurrence != nil {
		out.Occurrence = make([]string, len(idx))
		for k, i := range idx {
			out.Occurrence[k] = ts.Occurrence[i]
		}
	}
	if ts.RiskLevel != nil {
		out.RiskLevel = make([]string, len(idx))
		for k, i := range idx {
			out.RiskLevel[k] = ts.RiskLevel[i]
		}
	}
	return out
}

// EncodeLabels maps each value to the index of its class in the sorted class list
func EncodeLabels(values []string) (classes []string, codes []int) {
	seen := make(map[string]bool)
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			classes = append(classes, v)
		}
	}
	sort.Strings(classes)

	index := make(map[string]int, len(classes))
	for i, c := range classes {
		index[c] = i
	}
	codes = make([]int, len(values))
	for i, v := range values {
		codes[i] = index[v]
	}
	return classes, codes
}
