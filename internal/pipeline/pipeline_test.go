package pipeline

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/alexiusacademia/vivrisk/internal/dataset"
	"github.com/alexiusacademia/vivrisk/internal/testhelper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func hundredRows() *dataset.Table {
	records := make([][]string, 100)
	for i := range records {
		records[i] = []string{
			fmt.Sprint(100 + i),
			fmt.Sprint(1000 + 3*i),
			fmt.Sprintf("%.1f", float64(i)/4),
		}
	}
	return dataset.NewTable([]string{ColSpan, ColLength, ColAmplitude}, records)
}

func preparedPipeline(t *testing.T, raw *dataset.Table) *Pipeline {
	t.Helper()
	p := New("", Options{})
	p.SetRaw(raw)
	_, _, err := p.Clean()
	require.NoError(t, err)
	_, _, err = p.EngineerFeatures()
	require.NoError(t, err)
	return p
}

func TestPreconditions(t *testing.T) {
	p := New("unused.csv", Options{})

	_, _, err := p.Clean()
	assert.True(t, errors.Is(err, ErrPrecondition))
	assert.EqualError(t, err, "clean: load before clean")

	_, _, err = p.EngineerFeatures()
	assert.True(t, errors.Is(err, ErrPrecondition))

	_, err = p.Normalize()
	assert.True(t, errors.Is(err, ErrPrecondition))

	_, err = p.Split(0.25, 42)
	assert.True(t, errors.Is(err, ErrPrecondition))

	err = p.SaveProcessed(filepath.Join(t.TempDir(), "out.csv"))
	assert.True(t, errors.Is(err, ErrPrecondition))

	_, err = p.PrepareInference(hundredRows())
	assert.True(t, errors.Is(err, ErrPrecondition))

	_, err = p.ApplyFills(hundredRows())
	assert.True(t, errors.Is(err, ErrPrecondition))
}

func TestApplyFillsUsesSurveyValues(t *testing.T) {
	p := New(testhelper.WriteFile(t, "bridges.csv", testhelper.SampleCSV), Options{})
	_, _, err := p.Load()
	require.NoError(t, err)
	_, _, err = p.Clean()
	require.NoError(t, err)

	record := dataset.NewTable(
		[]string{ColStructuralType, ColMitigation, ColSpan, ColLength},
		[][]string{{"钢箱梁", "", "", "n/a"}},
	)
	filled, err := p.ApplyFills(record)
	require.NoError(t, err)

	assert.InDelta(t, 215, filled.Column(ColSpan).Number[0], 1e-12)
	assert.InDelta(t, 950, filled.Column(ColLength).Number[0], 1e-12)
	assert.Equal(t, "无", filled.Column(ColMitigation).Text[0])
	assert.True(t, record.Column(ColSpan).IsMissing(0))
}

func TestSplitWithoutAmplitude(t *testing.T) {
	raw := dataset.NewTable([]string{ColSpan}, [][]string{{"1"}, {"2"}, {"3"}, {"4"}})
	p := preparedPipeline(t, raw)

	assert.Nil(t, p.Targets())
	_, err := p.Split(0.25, 42)
	assert.True(t, errors.Is(err, ErrPrecondition))
}

func TestSplitSizes(t *testing.T) {
	p := preparedPipeline(t, hundredRows())
	_, err := p.Normalize()
	require.NoError(t, err)

	s, err := p.Split(0.25, 42)
	require.NoError(t, err)
	assert.Equal(t, 25, s.TestFeatures.Rows())
	assert.Equal(t, 75, s.TrainFeatures.Rows())
	assert.Equal(t, 25, s.TestTargets.Len())
	assert.Equal(t, 75, s.TrainTargets.Len())

	again, err := p.Split(0.25, 42)
	require.NoError(t, err)
	assert.True(t, mat.Equal(s.TestFeatures.Data, again.TestFeatures.Data))
	assert.Equal(t, s.TestTargets.Amplitude, again.TestTargets.Amplitude)

	other, err := p.Split(0.25, 7)
	require.NoError(t, err)
	assert.NotEqual(t, s.TestTargets.Amplitude, other.TestTargets.Amplitude)
}

func TestSplitKeepsRowsAligned(t *testing.T) {
	p := preparedPipeline(t, hundredRows())

	// no Normalize: raw features are split
	s, err := p.Split(0.3, 1)
	require.NoError(t, err)

	for i := 0; i < s.TestFeatures.Rows(); i++ {
		span := s.TestFeatures.Data.At(i, 0)
		row := int(span) - 100
		assert.InDelta(t, float64(row)/4, s.TestTargets.Amplitude[i], 0.06)
	}
	assert.Equal(t, 30, s.TestFeatures.Rows())
}

func TestSplitRejectsBadFraction(t *testing.T) {
	p := preparedPipeline(t, hundredRows())

	for _, f := range []float64{0, 1, -0.1, 1.5} {
		_, err := p.Split(f, 42)
		assert.Error(t, err, "fraction %g", f)
		assert.False(t, errors.Is(err, ErrPrecondition))
	}
}

func TestNormalizeRefits(t *testing.T) {
	p := preparedPipeline(t, hundredRows())

	first, err := p.Normalize()
	require.NoError(t, err)
	firstScaler := p.Scaler()

	second, err := p.Normalize()
	require.NoError(t, err)

	assert.NotSame(t, firstScaler, p.Scaler())
	assert.Equal(t, firstScaler, p.Scaler())
	assert.True(t, mat.Equal(first.Data, second.Data))
}

func TestFailedStageKeepsState(t *testing.T) {
	raw := dataset.NewTable([]string{ColSpan, ColLength}, [][]string{{"1", "1"}, {"2", "2"}})
	p := New("", Options{})
	p.SetRaw(raw)
	_, _, err := p.Clean()
	require.NoError(t, err)
	features, _, err := p.EngineerFeatures()
	require.NoError(t, err)

	p.SetRaw(dataset.NewTable([]string{ColSpan, ColLength}, [][]string{{"1", "0"}}))
	p.Options.StrictRatios = true
	_, _, err = p.Clean()
	require.NoError(t, err)
	_, _, err = p.EngineerFeatures()
	require.Error(t, err)

	assert.Same(t, features, p.Features())
}

func TestEndToEnd(t *testing.T) {
	path := testhelper.WriteFile(t, "bridges.csv", testhelper.SampleCSV)
	p := New(path, Options{})

	_, n, err := p.Load()
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	_, n, err = p.Clean()
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	features, targets, err := p.EngineerFeatures()
	require.NoError(t, err)
	assert.Equal(t, 14, features.Cols())
	require.NotNil(t, targets)
	assert.Equal(t, []float64{15.2, 6.8, 0.6, 4.5, 22.4}, targets.Amplitude)
	assert.Equal(t, []string{"高", "中", "低", "中", "高"}, targets.RiskLevel)

	normalized, err := p.Normalize()
	require.NoError(t, err)
	back, err := p.Scaler().InverseTransform(normalized.Data)
	require.NoError(t, err)
	assert.True(t, mat.EqualApprox(features.Data, back, 1e-6))

	s, err := p.Split(0.25, 42)
	require.NoError(t, err)
	assert.Equal(t, 2, s.TestFeatures.Rows())
	assert.Equal(t, 3, s.TrainFeatures.Rows())

	out := filepath.Join(t.TempDir(), "processed", "clean.csv")
	require.NoError(t, p.SaveProcessed(out))
	saved, n, err := dataset.Load(out)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Zero(t, saved.Column(ColAspectRatio).MissingCount())
}

func TestPrepareInference(t *testing.T) {
	path := testhelper.WriteFile(t, "bridges.csv", testhelper.SampleCSV)
	p := New(path, Options{})
	_, _, err := p.Load()
	require.NoError(t, err)
	_, _, err = p.Clean()
	require.NoError(t, err)
	_, _, err = p.EngineerFeatures()
	require.NoError(t, err)
	normalized, err := p.Normalize()
	require.NoError(t, err)

	// The cleaned training rows map onto the normalized training matrix
	x, err := p.PrepareInference(p.Cleaned())
	require.NoError(t, err)
	assert.True(t, mat.EqualApprox(normalized.Data, x, 1e-9))

	// Columns a new record lacks contribute 0
	record := dataset.NewTable(
		[]string{ColStructuralType, ColSpan, ColLength},
		[][]string{{"钢箱梁", "200", "800"}},
	)
	x, err = p.PrepareInference(record)
	require.NoError(t, err)
	r, c := x.Dims()
	assert.Equal(t, 1, r)
	assert.Equal(t, 14, c)

	raw, err := p.Scaler().InverseTransform(x)
	require.NoError(t, err)
	cols := p.Layout().Columns
	for j, name := range cols {
		switch name {
		case ColSpan:
			assert.InDelta(t, 200, raw.At(0, j), 1e-9)
		case FeatureSpanRatio:
			assert.InDelta(t, 0.25, raw.At(0, j), 1e-9)
		case "结构_钢箱梁":
			assert.InDelta(t, 1, raw.At(0, j), 1e-9)
		case ColAspectRatio, ColNaturalFrequency, ColFirstModeFrequency, ColSecondModeFrequency, ColVortexWindSpeed, ColDragRatio, FeatureMitigated, FeatureFreqRatio:
			// absent columns become 0
			assert.InDelta(t, 0, raw.At(0, j), 1e-9, name)
		}
	}
}
