package pipeline

import (
	"github.com/alexiusacademia/vivrisk/internal/dataset"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"
)

// Options controls feature engineering
type Options struct {
	// StrictRatios makes a zero ratio denominator an error instead of a non-finite feature
	StrictRatios bool
}

// Pipeline carries one dataset through load, clean, feature engineering,
// normalization and splitting. Each stage stores its result and fails when its
// predecessor has not run; a failing stage leaves the stored state unchanged.
type Pipeline struct {
	Path    string
	Options Options

	raw        *dataset.Table
	cleaned    *dataset.Table
	fills      FillValues
	layout     *Layout
	features   *FeatureMatrix
	targets    *TargetSet
	scaler     *Scaler
	normalized *FeatureMatrix
}

// New creates a pipeline for the table at path
func New(path string, opts Options) *Pipeline {
	return &Pipeline{Path: path, Options: opts}
}

// Load reads the raw table
func (p *Pipeline) Load() (*dataset.Table, int, error) {
	t, n, err := dataset.Load(p.Path)
	if err != nil {
		return nil, 0, err
	}
	p.raw = t
	log.Info().Str("path", p.Path).Int("rows", n).Msg("data loaded")
	return t, n, nil
}

// SetRaw installs an already loaded table as the raw stage result
func (p *Pipeline) SetRaw(t *dataset.Table) {
	p.raw = t
}

// Clean fills missing values and drops duplicate rows
func (p *Pipeline) Clean() (*dataset.Table, int, error) {
	if p.raw == nil {
		return nil, 0, &PreconditionError{Stage: "clean", Requires: "load"}
	}

	cleaned, fills := Clean(p.raw)
	p.cleaned, p.fills = cleaned, fills
	log.Info().Int("rows", cleaned.Len()).Int("dropped", p.raw.Len()-cleaned.Len()).Msg("data cleaned")
	return cleaned, cleaned.Len(), nil
}

// EngineerFeatures derives the feature matrix and target set from the cleaned table.
// The returned target set is nil when the table has no amplitude column.
func (p *Pipeline) EngineerFeatures() (*FeatureMatrix, *TargetSet, error) {
	if p.cleaned == nil {
		return nil, nil, &PreconditionError{Stage: "engineer features", Requires: "clean"}
	}

	layout := NewLayout(p.cleaned)
	features, err := layout.Build(p.cleaned, p.Options.StrictRatios)
	if err != nil {
		return nil, nil, err
	}
	targets := NewTargetSet(p.cleaned)

	p.layout, p.features, p.targets = layout, features, targets
	log.Info().Int("features", features.Cols()).Int("rows", features.Rows()).Bool("targets", targets != nil).Msg("features engineered")
	return features, targets, nil
}

// Normalize fits a scaler on the current feature matrix and applies it.
// Every call refits.
func (p *Pipeline) Normalize() (*FeatureMatrix, error) {
	if p.features == nil {
		return nil, &PreconditionError{Stage: "normalize", Requires: "engineer features"}
	}

	scaler := FitScaler(p.features.Data)
	data, err := scaler.Transform(p.features.Data)
	if err != nil {
		return nil, err
	}

	p.scaler = scaler
	p.normalized = &FeatureMatrix{Columns: append([]string(nil), p.features.Columns...), Data: data}
	log.Info().Int("features", p.normalized.Cols()).Msg("features normalized")
	return p.normalized, nil
}

// Split partitions normalized features (raw features when Normalize has not
// run) and all targets into train and test sets
func (p *Pipeline) Split(testFraction float64, seed uint64) (*Split, error) {
	if p.features == nil || p.targets == nil {
		return nil, &PreconditionError{Stage: "split", Requires: "engineer features with an amplitude target"}
	}

	features := p.features
	if p.normalized != nil {
		features = p.normalized
	}

	s, err := splitRows(features, p.targets, testFraction, seed)
	if err != nil {
		return nil, err
	}
	log.Info().Int("train", s.TrainFeatures.Rows()).Int("test", s.TestFeatures.Rows()).Msg("data split")
	return s, nil
}

// SaveProcessed writes the cleaned table to path (.csv or .xlsx)
func (p *Pipeline) SaveProcessed(path string) error {
	if p.cleaned == nil {
		return &PreconditionError{Stage: "save", Requires: "clean"}
	}
	if err := dataset.Save(p.cleaned, path); err != nil {
		return err
	}
	log.Info().Str("path", path).Int("rows", p.cleaned.Len()).Msg("processed data saved")
	return nil
}

// PrepareInference turns new raw records into model input: numeric coercion,
// gaps filled with the fill values recorded by Clean, features built with the
// stored layout and scaled with the stored scaler
func (p *Pipeline) PrepareInference(raw *dataset.Table) (*mat.Dense, error) {
	if p.layout == nil {
		return nil, &PreconditionError{Stage: "prepare inference", Requires: "engineer features"}
	}
	if p.scaler == nil {
		return nil, &PreconditionError{Stage: "prepare inference", Requires: "normalize"}
	}

	filled, err := p.ApplyFills(raw)
	if err != nil {
		return nil, err
	}
	features, err := p.layout.Build(filled, p.Options.StrictRatios)
	if err != nil {
		return nil, err
	}
	return p.scaler.Transform(features.Data)
}

// ApplyFills coerces new raw records and fills their gaps with the medians and
// modes Clean recorded for the survey. raw is not modified.
func (p *Pipeline) ApplyFills(raw *dataset.Table) (*dataset.Table, error) {
	if p.cleaned == nil {
		return nil, &PreconditionError{Stage: "apply fills", Requires: "clean"}
	}
	return applyFills(raw, p.fills), nil
}

// Raw returns the loaded table, or nil
func (p *Pipeline) Raw() *dataset.Table { return p.raw }

// Cleaned returns the cleaned table, or nil
func (p *Pipeline) Cleaned() *dataset.Table { return p.cleaned }

// FillValues returns the values Clean used for missing cells
func (p *Pipeline) FillValues() FillValues { return p.fills }

// Layout returns the feature layout, or nil
func (p *Pipeline) Layout() *Layout { return p.layout }

// Features returns the un-normalized feature matrix, or nil
func (p *Pipeline) Features() *FeatureMatrix { return p.features }

// Targets returns the target set, or nil
func (p *Pipeline) Targets() *TargetSet { return p.targets }

// Scaler returns the fitted scaler, or nil
func (p *Pipeline) Scaler() *Scaler { return p.scaler }
