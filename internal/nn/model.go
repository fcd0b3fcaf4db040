package nn

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Network is the capability shared by both topologies
type Network interface {
	InputDim() int
	SetTraining(training bool)
	Training() bool
	Params() int
	Describe() string
}

// Config describes a single-task network
type Config struct {
	InputDim    int
	HiddenDims  []int
	OutputDim   int // 1 for regression, N for N-class classification
	DropoutRate float64
	Seed        uint64
}

// DefaultConfig returns the reference single-task topology for inputDim features
func DefaultConfig(inputDim int) Config {
	return Config{
		InputDim:    inputDim,
		HiddenDims:  []int{64, 32, 16},
		OutputDim:   1,
		DropoutRate: 0.2,
		Seed:        1,
	}
}

// MultiTaskConfig describes a shared-trunk network with amplitude, occurrence and risk heads
type MultiTaskConfig struct {
	InputDim                 int
	SharedHiddenDims         []int
	AmplitudeHiddenDims      []int
	ClassificationHiddenDims []int
	NumRiskClasses           int
	DropoutRate              float64
	Seed                     uint64
}

// DefaultMultiTaskConfig returns the reference multi-task topology for inputDim features
func DefaultMultiTaskConfig(inputDim int) MultiTaskConfig {
	return MultiTaskConfig{
		InputDim:                 inputDim,
		SharedHiddenDims:         []int{64, 32},
		AmplitudeHiddenDims:      []int{16},
		ClassificationHiddenDims: []int{16},
		NumRiskClasses:           3,
		DropoutRate:              0.2,
		Seed:                     1,
	}
}

// Widths of the fixed heads
const (
	AmplitudeWidth  = 1
	OccurrenceWidth = 2
)

// ConfigError reports an invalid network topology
type ConfigError struct {
	msg string
}

func (e *ConfigError) Error() string {
	return e.msg
}

func validate(inputDim int, dims map[string][]int, dropout float64) error {
	if inputDim <= 0 {
		return &ConfigError{fmt.Sprintf("input dimension must be positive, got %d", inputDim)}
	}
	for name, list := range dims {
		for i, d := range list {
			if d <= 0 {
				return &ConfigError{fmt.Sprintf("%s[%d] must be positive, got %d", name, i, d)}
			}
		}
	}
	if dropout < 0 || dropout >= 1 {
		return &ConfigError{fmt.Sprintf("dropout rate must be in [0, 1), got %g", dropout)}
	}
	return nil
}

// Validate checks the single-task topology
func (c Config) Validate() error {
	if err := validate(c.InputDim, map[string][]int{"hidden dims": c.HiddenDims}, c.DropoutRate); err != nil {
		return err
	}
	if c.OutputDim <= 0 {
		return &ConfigError{fmt.Sprintf("output dimension must be positive, got %d", c.OutputDim)}
	}
	return nil
}

// Validate checks the multi-task topology
func (c MultiTaskConfig) Validate() error {
	dims := map[string][]int{
		"shared hidden dims":         c.SharedHiddenDims,
		"amplitude hidden dims":      c.AmplitudeHiddenDims,
		"classification hidden dims": c.ClassificationHiddenDims,
	}
	if err := validate(c.InputDim, dims, c.DropoutRate); err != nil {
		return err
	}
	if c.NumRiskClasses < 2 {
		return &ConfigError{fmt.Sprintf("risk classes must be at least 2, got %d", c.NumRiskClasses)}
	}
	return nil
}

// trunk builds Linear → ReLU → BatchNorm → Dropout blocks and returns the last width
func trunk(in int, dims []int, rate float64, rng *rand.Rand) (Sequential, int) {
	var s Sequential
	for _, d := range dims {
		s = append(s, NewLinear(in, d, rng), ReLU{}, NewBatchNorm(d), NewDropout(rate, rng))
		in = d
	}
	return s, in
}

// branch builds Linear → ReLU → Dropout blocks followed by a linear head of width out
func branch(in int, dims []int, out int, rate float64, rng *rand.Rand) Sequential {
	var s Sequential
	for _, d := range dims {
		s = append(s, NewLinear(in, d, rng), ReLU{}, NewDropout(rate, rng))
		in = d
	}
	return append(s, NewLinear(in, out, rng))
}

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func checkInput(x mat.Matrix, want int) error {
	r, c := x.Dims()
	if c != want {
		return fmt.Errorf("input width %d, network expects %d", c, want)
	}
	if r == 0 {
		return fmt.Errorf("empty batch")
	}
	return nil
}

func dense(x mat.Matrix) *mat.Dense {
	if d, ok := x.(*mat.Dense); ok {
		return d
	}
	return mat.DenseCopyOf(x)
}

// SingleTask is a feed-forward regressor or classifier
type SingleTask struct {
	Config Config

	layers   Sequential
	training bool
}

// NewSingleTask builds the network in training mode
func NewSingleTask(cfg Config) (*SingleTask, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rng := newRand(cfg.Seed)
	layers, last := trunk(cfg.InputDim, cfg.HiddenDims, cfg.DropoutRate, rng)
	layers = append(layers, NewLinear(last, cfg.OutputDim, rng))

	m := &SingleTask{Config: cfg, layers: layers}
	m.SetTraining(true)
	return m, nil
}

// Forward returns a batch × OutputDim prediction
func (m *SingleTask) Forward(x mat.Matrix) (*mat.Dense, error) {
	if err := checkInput(x, m.Config.InputDim); err != nil {
		return nil, err
	}
	return m.layers.Forward(dense(x)), nil
}

// Layers exposes the layer stack
func (m *SingleTask) Layers() Sequential { return m.layers }

// OutputDim returns the width of the output layer
func (m *SingleTask) OutputDim() int { return m.Config.OutputDim }

func (m *SingleTask) InputDim() int { return m.Config.InputDim }

func (m *SingleTask) Training() bool { return m.training }

func (m *SingleTask) SetTraining(training bool) {
	m.training = training
	m.layers.setTraining(training)
}

func (m *SingleTask) Params() int { return m.layers.Params() }

// Describe renders the layer stack
func (m *SingleTask) Describe() string {
	var b strings.Builder
	fmt.Fprintf(&b, "SingleTask(input=%d, output=%d)\n", m.Config.InputDim, m.Config.OutputDim)
	describe(&b, "network", m.layers)
	fmt.Fprintf(&b, "parameters: %d\n", m.Params())
	return b.String()
}

// Outputs bundles the three multi-task predictions, each batch-aligned with the input
type Outputs struct {
	Amplitude  *mat.Dense // batch × 1
	Occurrence *mat.Dense // batch × 2
	Risk       *mat.Dense // batch × NumRiskClasses
}

// MultiTask shares one trunk across amplitude, occurrence and risk heads
type MultiTask struct {
	Config MultiTaskConfig

	Shared     Sequential
	Amplitude  Sequential
	Occurrence Sequential
	Risk       Sequential

	training bool
}

// NewMultiTask builds the network in training mode
func NewMultiTask(cfg MultiTaskConfig) (*MultiTask, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rng := newRand(cfg.Seed)
	shared, width := trunk(cfg.InputDim, cfg.SharedHiddenDims, cfg.DropoutRate, rng)

	m := &MultiTask{
		Config:     cfg,
		Shared:     shared,
		Amplitude:  branch(width, cfg.AmplitudeHiddenDims, AmplitudeWidth, cfg.DropoutRate, rng),
		Occurrence: branch(width, cfg.ClassificationHiddenDims, OccurrenceWidth, cfg.DropoutRate, rng),
		Risk:       branch(width, cfg.ClassificationHiddenDims, cfg.NumRiskClasses, cfg.DropoutRate, rng),
	}
	m.SetTraining(true)
	return m, nil
}

// Forward runs the trunk once and every head on its output
func (m *MultiTask) Forward(x mat.Matrix) (*Outputs, error) {
	if err := checkInput(x, m.Config.InputDim); err != nil {
		return nil, err
	}
	shared := m.Shared.Forward(dense(x))
	return &Outputs{
		Amplitude:  m.Amplitude.Forward(shared),
		Occurrence: m.Occurrence.Forward(shared),
		Risk:       m.Risk.Forward(shared),
	}, nil
}

func (m *MultiTask) InputDim() int { return m.Config.InputDim }

func (m *MultiTask) Training() bool { return m.training }

func (m *MultiTask) SetTraining(training bool) {
	m.training = training
	for _, s := range []Sequential{m.Shared, m.Amplitude, m.Occurrence, m.Risk} {
		s.setTraining(training)
	}
}

func (m *MultiTask) Params() int {
	return m.Shared.Params() + m.Amplitude.Params() + m.Occurrence.Params() + m.Risk.Params()
}

// Describe renders the trunk and each head
func (m *MultiTask) Describe() string {
	var b strings.Builder
	fmt.Fprintf(&b, "MultiTask(input=%d, risk classes=%d)\n", m.Config.InputDim, m.Config.NumRiskClasses)
	describe(&b, "shared", m.Shared)
	describe(&b, "amplitude", m.Amplitude)
	describe(&b, "occurrence", m.Occurrence)
	describe(&b, "risk", m.Risk)
	fmt.Fprintf(&b, "parameters: %d\n", m.Params())
	return b.String()
}

func describe(b *strings.Builder, name string, s Sequential) {
	fmt.Fprintf(b, "  %s:\n", name)
	for _, l := range s {
		fmt.Fprintf(b, "    %s\n", l)
	}
}
