package pipeline

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Scaler standardizes features to zero mean and unit variance per column
type Scaler struct {
	Mean []float64 `json:"mean" yaml:"mean"`
	Std  []float64 `json:"std" yaml:"std"` // population std; 1 for constant columns
}

// FitScaler computes per-column mean and population standard deviation
func FitScaler(m *mat.Dense) *Scaler {
	_, c := m.Dims()
	s := &Scaler{Mean: make([]float64, c), Std: make([]float64, c)}

	for j := 0; j < c; j++ {
		col := mat.Col(nil, j, m)
		mean, std := stat.PopMeanStdDev(col, nil)
		if std == 0 {
			std = 1
		}
		s.Mean[j] = mean
		s.Std[j] = std
	}
	return s
}

// Transform returns (x - mean) / std
func (s *Scaler) Transform(m *mat.Dense) (*mat.Dense, error) {
	if err := s.check(m); err != nil {
		return nil, err
	}
	out := mat.DenseCopyOf(m)
	out.Apply(func(_, j int, v float64) float64 {
		return (v - s.Mean[j]) / s.Std[j]
	}, out)
	return out, nil
}

// InverseTransform returns x * std + mean
func (s *Scaler) InverseTransform(m *mat.Dense) (*mat.Dense, error) {
	if err := s.check(m); err != nil {
		return nil, err
	}
	out := mat.DenseCopyOf(m)
	out.Apply(func(_, j int, v float64) float64 {
		return v*s.Std[j] + s.Mean[j]
	}, out)
	return out, nil
}

func (s *Scaler) check(m *mat.Dense) error {
	if _, c := m.Dims(); c != len(s.Mean) {
		return fmt.Errorf("scaler fitted on %d features, got %d", len(s.Mean), c)
	}
	return nil
}
