package nn

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Layer is one stage of a feed-forward network operating on a batch
// (one row per sample)
type Layer interface {
	Forward(x *mat.Dense) *mat.Dense
	Params() int
	String() string
}

// modal layers behave differently in training and evaluation
type modal interface {
	setTraining(training bool)
}

// Linear computes y = x·Wᵀ + b
type Linear struct {
	In, Out int
	Weight  *mat.Dense // Out × In
	Bias    []float64  // Out
}

// NewLinear creates a linear layer with Xavier-uniform weights and zero bias
func NewLinear(in, out int, src rand.Source) *Linear {
	l := &Linear{
		In:     in,
		Out:    out,
		Weight: mat.NewDense(out, in, nil),
		Bias:   make([]float64, out),
	}
	XavierUniform(l.Weight, src)
	return l
}

// Forward applies the affine transform
func (l *Linear) Forward(x *mat.Dense) *mat.Dense {
	var out mat.Dense
	out.Mul(x, l.Weight.T())
	out.Apply(func(_, j int, v float64) float64 {
		return v + l.Bias[j]
	}, &out)
	return &out
}

// Params returns the number of weights and biases
func (l *Linear) Params() int {
	return l.In*l.Out + l.Out
}

func (l *Linear) String() string {
	return fmt.Sprintf("Linear(%d → %d)", l.In, l.Out)
}

// XavierUniform fills w (fan_out × fan_in) from U(-a, a) with a = √(6 / (fan_in + fan_out))
func XavierUniform(w *mat.Dense, src rand.Source) {
	fanOut, fanIn := w.Dims()
	a := math.Sqrt(6 / float64(fanIn+fanOut))
	dist := distuv.Uniform{Min: -a, Max: a, Src: src}
	w.Apply(func(_, _ int, _ float64) float64 {
		return dist.Rand()
	}, w)
}

// ReLU zeroes negative activations
type ReLU struct{}

// Forward applies max(0, x)
func (ReLU) Forward(x *mat.Dense) *mat.Dense {
	out := mat.DenseCopyOf(x)
	out.Apply(func(_, _ int, v float64) float64 {
		return math.Max(0, v)
	}, out)
	return out
}

// Params returns 0
func (ReLU) Params() int { return 0 }

func (ReLU) String() string { return "ReLU" }

// BatchNorm normalizes each feature over the batch. In evaluation mode it
// uses the running statistics collected during training.
type BatchNorm struct {
	Features    int
	Gamma       []float64
	Beta        []float64
	RunningMean []float64
	RunningVar  []float64
	Eps         float64
	Momentum    float64

	training bool
}

// NewBatchNorm creates a batch norm layer with unit scale, zero shift and
// running statistics of a standard normal
func NewBatchNorm(features int) *BatchNorm {
	bn := &BatchNorm{
		Features:    features,
		Gamma:       make([]float64, features),
		Beta:        make([]float64, features),
		RunningMean: make([]float64, features),
		RunningVar:  make([]float64, features),
		Eps:         1e-5,
		Momentum:    0.1,
	}
	for i := range bn.Gamma {
		bn.Gamma[i] = 1
		bn.RunningVar[i] = 1
	}
	return bn
}

// Forward normalizes x with batch statistics (training, batch > 1) or running statistics
func (bn *BatchNorm) Forward(x *mat.Dense) *mat.Dense {
	rows, cols := x.Dims()
	mean, variance := bn.RunningMean, bn.RunningVar

	if bn.training && rows > 1 {
		mean = make([]float64, cols)
		variance = make([]float64, cols)
		for j := 0; j < cols; j++ {
			col := mat.Col(nil, j, x)
			var m, v float64
			for _, c := range col {
				m += c
			}
			m /= float64(rows)
			for _, c := range col {
				v += (c - m) * (c - m)
			}
			mean[j] = m
			variance[j] = v / float64(rows)

			// running variance tracks the unbiased estimate
			unbiased := v / float64(rows-1)
			bn.RunningMean[j] = (1-bn.Momentum)*bn.RunningMean[j] + bn.Momentum*m
			bn.RunningVar[j] = (1-bn.Momentum)*bn.RunningVar[j] + bn.Momentum*unbiased
		}
	}

	out := mat.DenseCopyOf(x)
	out.Apply(func(_, j int, v float64) float64 {
		return bn.Gamma[j]*(v-mean[j])/math.Sqrt(variance[j]+bn.Eps) + bn.Beta[j]
	}, out)
	return out
}

// Params returns the number of learnable scale and shift values
func (bn *BatchNorm) Params() int { return 2 * bn.Features }

func (bn *BatchNorm) String() string { return fmt.Sprintf("BatchNorm1d(%d)", bn.Features) }

func (bn *BatchNorm) setTraining(training bool) { bn.training = training }

// Dropout zeroes activations with probability Rate during training and scales
// the survivors by 1/(1-Rate). It is the identity in evaluation mode.
type Dropout struct {
	Rate float64

	rng      *rand.Rand
	training bool
}

// NewDropout creates a dropout layer drawing from rng
func NewDropout(rate float64, rng *rand.Rand) *Dropout {
	return &Dropout{Rate: rate, rng: rng}
}

// Forward applies the dropout mask in training mode
func (d *Dropout) Forward(x *mat.Dense) *mat.Dense {
	out := mat.DenseCopyOf(x)
	if !d.training || d.Rate == 0 {
		return out
	}
	keep := 1 - d.Rate
	out.Apply(func(_, _ int, v float64) float64 {
		if d.rng.Float64() < d.Rate {
			return 0
		}
		return v / keep
	}, out)
	return out
}

// Params returns 0
func (d *Dropout) Params() int { return 0 }

func (d *Dropout) String() string { return fmt.Sprintf("Dropout(p=%.2f)", d.Rate) }

func (d *Dropout) setTraining(training bool) { d.training = training }

// Sequential runs layers in order
type Sequential []Layer

// Forward passes x through every layer
func (s Sequential) Forward(x *mat.Dense) *mat.Dense {
	for _, l := range s {
		x = l.Forward(x)
	}
	return x
}

// Params returns the total number of learnable values
func (s Sequential) Params() int {
	n := 0
	for _, l := range s {
		n += l.Params()
	}
	return n
}

func (s Sequential) setTraining(training bool) {
	for _, l := range s {
		if m, ok := l.(modal); ok {
			m.setTraining(training)
		}
	}
}

// Last returns the final layer, or nil for an empty stack
func (s Sequential) Last() Layer {
	if len(s) == 0 {
		return nil
	}
	return s[len(s)-1]
}
