package risk

import (
	"fmt"

	"github.com/alexiusacademia/vivrisk/internal/nn"
	"gonum.org/v1/gonum/mat"
)

// Assessor runs a network in evaluation mode and tiers its amplitude predictions
type Assessor struct {
	model nn.Network
}

// NewAssessor wraps model and switches it to evaluation mode
func NewAssessor(model nn.Network) *Assessor {
	model.SetTraining(false)
	return &Assessor{model: model}
}

// Model returns the wrapped network
func (a *Assessor) Model() nn.Network {
	return a.model
}

// PredictAmplitude returns one amplitude (cm) per row of x
func (a *Assessor) PredictAmplitude(x mat.Matrix) ([]float64, error) {
	// a caller may have flipped the mode since construction
	a.model.SetTraining(false)

	var out *mat.Dense
	switch m := a.model.(type) {
	case *nn.MultiTask:
		res, err := m.Forward(x)
		if err != nil {
			return nil, err
		}
		out = res.Amplitude
	case *nn.SingleTask:
		if m.OutputDim() != 1 {
			return nil, fmt.Errorf("single-task model has %d outputs, amplitude needs 1", m.OutputDim())
		}
		res, err := m.Forward(x)
		if err != nil {
			return nil, err
		}
		out = res
	default:
		return nil, fmt.Errorf("unsupported model type %T", a.model)
	}
	return mat.Col(nil, 0, out), nil
}

// Assessment holds parallel per-sample results
type Assessment struct {
	Amplitudes []float64 `json:"amplitudes" yaml:"amplitudes"`
	Scores     []float64 `json:"scores" yaml:"scores"`
	Tiers      []Tier    `json:"tiers" yaml:"tiers"`
}

// Len returns the number of samples
func (s *Assessment) Len() int {
	return len(s.Amplitudes)
}

// AssessRisk predicts amplitudes for x and classifies each one
func (a *Assessor) AssessRisk(x mat.Matrix) (*Assessment, error) {
	amps, err := a.PredictAmplitude(x)
	if err != nil {
		return nil, err
	}
	return Assess(amps), nil
}

// Assess classifies known amplitudes
func Assess(amplitudes []float64) *Assessment {
	s := &Assessment{
		Amplitudes: amplitudes,
		Scores:     make([]float64, len(amplitudes)),
		Tiers:      make([]Tier, len(amplitudes)),
	}
	for i, amp := range amplitudes {
		s.Tiers[i], s.Scores[i] = Classify(amp)
	}
	return s
}

// BridgeInfo is caller-supplied metadata carried into a report
type BridgeInfo struct {
	Name           string  `json:"name,omitempty" yaml:"name,omitempty"`
	StructuralType string  `json:"structural_type,omitempty" yaml:"structural_type,omitempty"`
	Span           float64 `json:"span_m,omitempty" yaml:"span_m,omitempty"`
	Length         float64 `json:"length_m,omitempty" yaml:"length_m,omitempty"`
}

// Report summarizes the assessment of one bridge
type Report struct {
	Bridge             *BridgeInfo `json:"bridge,omitempty" yaml:"bridge,omitempty"`
	PredictedAmplitude float64     `json:"predicted_amplitude_cm" yaml:"predicted_amplitude_cm"`
	RiskScore          float64     `json:"risk_score" yaml:"risk_score"`
	Tier               Tier        `json:"tier" yaml:"tier"`
	RiskLevel          string      `json:"risk_level" yaml:"risk_level"`
	Recommendations    []string    `json:"recommendations" yaml:"recommendations"`
}

// GenerateReport assesses x and reports on its first sample
func (a *Assessor) GenerateReport(x mat.Matrix, info *BridgeInfo) (*Report, error) {
	s, err := a.AssessRisk(x)
	if err != nil {
		return nil, err
	}
	return NewReport(s, info)
}

// NewReport builds a report from the first sample of s
func NewReport(s *Assessment, info *BridgeInfo) (*Report, error) {
	if s.Len() == 0 {
		return nil, fmt.Errorf("no samples to report on")
	}
	return &Report{
		Bridge:             info,
		PredictedAmplitude: s.Amplitudes[0],
		RiskScore:          s.Scores[0],
		Tier:               s.Tiers[0],
		RiskLevel:          s.Tiers[0].DisplayName(),
		Recommendations:    RecommendationsFor(s.Tiers[0]),
	}, nil
}
