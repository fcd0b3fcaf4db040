package risk

// Recommendations lists the mitigation advice per tier
var Recommendations = map[Tier][]string{
	Low: {
		"桥梁涡振风险较低，建议定期监测",
		"可考虑在关键部位安装传感器进行长期监测",
		"建议每年进行一次结构健康检查",
	},
	Medium: {
		"桥梁存在一定涡振风险，建议加强监测",
		"考虑安装风速监测设备",
		"建议评估是否需要安装抑振措施",
		"增加检查频率至每半年一次",
	},
	High: {
		"桥梁涡振风险较高，需要立即采取措施",
		"强烈建议安装抑振装置（如调谐质量阻尼器）",
		"建立实时监测系统",
		"考虑限制通行或降低设计风速",
		"建议每季度进行详细检查",
	},
}

// FallbackRecommendation is returned for a tier without dedicated advice
const FallbackRecommendation = "请咨询专业工程师"

// RecommendationsFor returns a copy of the advice for t
func RecommendationsFor(t Tier) []string {
	recs, ok := Recommendations[t]
	if !ok {
		return []string{FallbackRecommendation}
	}
	return append([]string(nil), recs...)
}
