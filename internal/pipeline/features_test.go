package pipeline

import (
	"errors"
	"math"
	"testing"

	"github.com/alexiusacademia/vivrisk/internal/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func engineer(t *testing.T, header []string, records [][]string, strict bool) (*FeatureMatrix, *TargetSet, error) {
	t.Helper()
	cleaned, _ := Clean(dataset.NewTable(header, records))
	layout := NewLayout(cleaned)
	features, err := layout.Build(cleaned, strict)
	return features, NewTargetSet(cleaned), err
}

func TestSpanLengthRatio(t *testing.T) {
	features, _, err := engineer(t,
		[]string{ColSpan, ColLength},
		[][]string{{"10", "100"}, {"20", "100"}, {"30", "150"}, {"40", "200"}},
		false,
	)
	require.NoError(t, err)

	assert.Equal(t, []string{ColSpan, ColLength, FeatureSpanRatio}, features.Columns)
	ratio := features.Column(FeatureSpanRatio)
	expected := []float64{0.1, 0.2, 0.2, 0.2}
	for i := range expected {
		assert.InDelta(t, expected[i], ratio[i], 1e-12)
	}
}

func TestFeatureColumnCount(t *testing.T) {
	tests := []struct {
		name     string
		header   []string
		records  [][]string
		expected int
	}{
		{
			name:     "base columns only",
			header:   []string{ColAspectRatio, ColVortexWindSpeed, ColDragRatio},
			records:  [][]string{{"1", "2", "3"}},
			expected: 3,
		},
		{
			name:     "amplitude is not a feature",
			header:   []string{ColSpan, ColAmplitude, ColMitigatedAmplitude},
			records:  [][]string{{"1", "2", "3"}},
			expected: 1,
		},
		{
			name:     "one indicator per structural type",
			header:   []string{ColSpan, ColStructuralType},
			records:  [][]string{{"1", "钢箱梁"}, {"2", "叠合梁"}, {"3", "钢箱梁"}},
			expected: 1 + 2,
		},
		{
			name:     "mitigation flag",
			header:   []string{ColSpan, ColMitigation},
			records:  [][]string{{"1", "无"}},
			expected: 2,
		},
		{
			name:     "frequency ratio needs both modes",
			header:   []string{ColFirstModeFrequency},
			records:  [][]string{{"1"}},
			expected: 1,
		},
		{
			name:     "both ratios",
			header:   []string{ColSpan, ColLength, ColFirstModeFrequency, ColSecondModeFrequency},
			records:  [][]string{{"1", "2", "3", "4"}},
			expected: 4 + 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			features, _, err := engineer(t, tt.header, tt.records, false)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, features.Cols())
			assert.Equal(t, len(tt.records) > 0, features.Rows() > 0)
		})
	}
}

func TestSampleFeatureLayout(t *testing.T) {
	cleaned, _ := Clean(loadSample(t))
	layout := NewLayout(cleaned)

	expected := append(append([]string(nil), BaseFeatureColumns...),
		"结构_叠合梁", "结构_混凝土箱梁", "结构_钢箱梁",
		FeatureMitigated, FeatureSpanRatio, FeatureFreqRatio,
	)
	assert.Equal(t, expected, layout.Columns)

	features, err := layout.Build(cleaned, false)
	require.NoError(t, err)
	assert.Equal(t, 14, features.Cols())
	assert.Equal(t, 5, features.Rows())

	assert.Equal(t, []float64{0, 0, 1, 0, 0}, features.Column("结构_混凝土箱梁"))
	assert.Equal(t, []float64{0, 1, 0, 1, 0}, features.Column(FeatureMitigated))
	assert.InDelta(t, 2.0, features.Column(FeatureFreqRatio)[0], 1e-12)
}

func TestRatioZeroDenominator(t *testing.T) {
	header := []string{ColSpan, ColLength}
	records := [][]string{{"10", "0"}, {"0", "0"}, {"10", "100"}}

	t.Run("propagates non-finite values", func(t *testing.T) {
		features, _, err := engineer(t, header, records, false)
		require.NoError(t, err)

		ratio := features.Column(FeatureSpanRatio)
		assert.True(t, math.IsInf(ratio[0], 1))
		assert.Equal(t, 0.0, ratio[1]) // 0/0 is missing, filled with 0
		assert.InDelta(t, 0.1, ratio[2], 1e-12)
	})

	t.Run("strict mode rejects", func(t *testing.T) {
		_, _, err := engineer(t, header, records, true)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidFeatureValue))

		var fe *FeatureValueError
		require.True(t, errors.As(err, &fe))
		assert.Equal(t, FeatureSpanRatio, fe.Feature)
		assert.Equal(t, 0, fe.Row)
	})
}

func TestBuildWithForeignTable(t *testing.T) {
	train, _ := Clean(dataset.NewTable(
		[]string{ColSpan, ColStructuralType},
		[][]string{{"1", "钢箱梁"}, {"2", "叠合梁"}},
	))
	layout := NewLayout(train)

	other := dataset.NewTable([]string{ColStructuralType}, [][]string{{"斜拉桥"}, {"钢箱梁"}})
	features, err := layout.Build(other, false)
	require.NoError(t, err)

	assert.Equal(t, layout.Columns, features.Columns)
	assert.Equal(t, []float64{0, 0}, features.Column(ColSpan))
	assert.Equal(t, []float64{0, 1}, features.Column("结构_钢箱梁"))
	assert.Equal(t, []float64{0, 0}, features.Column("结构_叠合梁"))
}

func TestBuildRejectsEmptyInput(t *testing.T) {
	_, _, err := engineer(t, []string{"桥名"}, [][]string{{"A"}}, false)
	assert.Error(t, err)

	_, _, err = engineer(t, []string{ColSpan}, nil, false)
	assert.Error(t, err)
}

func TestTargetSet(t *testing.T) {
	tests := []struct {
		name       string
		header     []string
		nilTargets bool
		occurrence bool
		riskLevel  bool
	}{
		{name: "no amplitude column", header: []string{ColSpan, ColRiskLevel}, nilTargets: true},
		{name: "amplitude only", header: []string{ColSpan, ColAmplitude}},
		{name: "all targets", header: []string{ColSpan, ColAmplitude, ColVortexOccurrence, ColRiskLevel}, occurrence: true, riskLevel: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := make([]string, len(tt.header))
			for i := range row {
				row[i] = "1"
			}
			_, targets, err := engineer(t, tt.header, [][]string{row}, false)
			require.NoError(t, err)

			if tt.nilTargets {
				assert.Nil(t, targets)
				return
			}
			require.NotNil(t, targets)
			assert.Equal(t, []float64{1}, targets.Amplitude)
			assert.Equal(t, tt.occurrence, targets.HasOccurrence())
			assert.Equal(t, tt.riskLevel, targets.HasRiskLevel())
		})
	}
}

func TestEncodeLabels(t *testing.T) {
	classes, codes := EncodeLabels([]string{"高", "低", "中", "低"})
	assert.Equal(t, []string{"中", "低", "高"}, classes)
	assert.Equal(t, []int{2, 1, 0, 1}, codes)
}
