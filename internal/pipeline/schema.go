package pipeline

import "github.com/alexiusacademia/vivrisk/internal/dataset"

// Column names of the bridge survey table
const (
	ColAspectRatio         = "宽高比"       // width/depth ratio of the deck section
	ColSpan                = "跨度_m"      // main span (m)
	ColLength              = "长度_m"      // total length (m)
	ColNaturalFrequency    = "自振频率_Hz"   // natural frequency (Hz)
	ColFirstModeFrequency  = "一阶频率_Hz"   // first vertical mode (Hz)
	ColSecondModeFrequency = "二阶频率_Hz"   // second vertical mode (Hz)
	ColVortexWindSpeed     = "涡振风速_m_s"  // lock-in wind speed (m/s)
	ColAmplitude           = "振幅_cm"     // observed VIV amplitude (cm)
	ColDragRatio           = "阻力比"       // resistance ratio
	ColMitigatedAmplitude  = "措施后振幅_cm"  // amplitude after mitigation (cm)
	ColStructuralType      = "结构形式"      // deck type
	ColMitigation          = "自证措施"      // mitigation measure
	ColVortexOccurrence    = "涡振发生"      // whether VIV was observed
	ColRiskLevel           = "风险等级"      // surveyed risk level
)

// Derived feature names
const (
	StructurePrefix    = "结构_" // one-hot prefix for structural types
	FeatureMitigated   = "有自证措施"
	FeatureSpanRatio   = "跨长比" // span / length
	FeatureFreqRatio   = "频率比" // second / first mode frequency
	NoMitigation       = "无"   // mitigation value meaning "none"
	UnknownCategory    = "未知"  // fill value for categorical columns with no observations
)

// NumericColumns are coerced to numbers and median-filled by the cleaner
var NumericColumns = []string{
	ColAspectRatio, ColSpan, ColLength, ColNaturalFrequency,
	ColFirstModeFrequency, ColSecondModeFrequency, ColVortexWindSpeed,
	ColAmplitude, ColDragRatio, ColMitigatedAmplitude,
}

// CategoricalColumns are mode-filled by the cleaner
var CategoricalColumns = []string{
	ColStructuralType, ColMitigation, ColVortexOccurrence, ColRiskLevel,
}

// BaseFeatureColumns are the numeric columns used directly as features, in order
var BaseFeatureColumns = []string{
	ColAspectRatio, ColSpan, ColLength, ColNaturalFrequency,
	ColFirstModeFrequency, ColSecondModeFrequency, ColVortexWindSpeed, ColDragRatio,
}

// Schema is the intersection of the declared columns with what a table provides.
// Feature-list construction depends only on this.
type Schema struct {
	Base          []string // base feature columns present, in declared order
	Numeric       []string // numeric columns present
	Categorical   []string // categorical columns present
	StructureType bool
	Mitigation    bool
	SpanRatio     bool // span and length both present
	FreqRatio     bool // first and second mode frequencies both present
	Amplitude     bool
	Occurrence    bool
	RiskLevel     bool
}

// ResolveSchema intersects the declared columns with the table's columns
func ResolveSchema(t *dataset.Table) Schema {
	s := Schema{
		Base:          present(t, BaseFeatureColumns),
		Numeric:       present(t, NumericColumns),
		Categorical:   present(t, CategoricalColumns),
		StructureType: t.Has(ColStructuralType),
		Mitigation:    t.Has(ColMitigation),
		SpanRatio:     t.Has(ColSpan) && t.Has(ColLength),
		FreqRatio:     t.Has(ColFirstModeFrequency) && t.Has(ColSecondModeFrequency),
		Amplitude:     t.Has(ColAmplitude),
		Occurrence:    t.Has(ColVortexOccurrence),
		RiskLevel:     t.Has(ColRiskLevel),
	}
	return s
}

func present(t *dataset.Table, names []string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		if t.Has(name) {
			out = append(out, name)
		}
	}
	return out
}
