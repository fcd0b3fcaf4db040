package risk

import "math"

// Amplitude thresholds (cm)
const (
	LowThreshold    = 1.0  // below: low risk
	MediumThreshold = 10.0 // below: medium risk
	HighThreshold   = 40.0 // score saturates at 1.0 from here on
)

// Tier is a discrete risk level
type Tier string

const (
	Low    Tier = "low"
	Medium Tier = "medium"
	High   Tier = "high"
)

// DisplayName returns the label used in engineering reports
func (t Tier) DisplayName() string {
	switch t {
	case Low:
		return "低风险"
	case Medium:
		return "中风险"
	case High:
		return "高风险"
	}
	return string(t)
}

// Classify maps an amplitude (cm) to a tier and a continuous score.
//
//	a < 1          low     0.1 + 0.3·a
//	1 ≤ a < 10     medium  0.4 + 0.4·(a - 1)/9
//	a ≥ 10         high    0.8 + 0.2·min(1, (a - 10)/30)
func Classify(a float64) (Tier, float64) {
	switch {
	case a < LowThreshold:
		return Low, 0.1 + 0.3*(a/LowThreshold)
	case a < MediumThreshold:
		return Medium, 0.4 + 0.4*((a-LowThreshold)/(MediumThreshold-LowThreshold))
	default:
		return High, 0.8 + 0.2*math.Min(1.0, (a-MediumThreshold)/(HighThreshold-MediumThreshold))
	}
}

// ScoreBand returns the score interval a tier maps into
func ScoreBand(t Tier) (lo, hi float64) {
	switch t {
	case Low:
		return 0.1, 0.4
	case Medium:
		return 0.4, 0.8
	case High:
		return 0.8, 1.0
	}
	return 0, 0
}
