package enrich

import "insight_server/core/domain"

// Risk factor weights. The four factors are weighted sums over negativity,
// toxicity, intent severity, and sarcasm; the result is clamped to [0,1].
const (
	riskWeightNegativity = 0.4
	riskWeightToxicity   = 0.3
	riskWeightIntent     = 0.2
	riskWeightSarcasm    = 0.1
)

// intentRiskWeights maps each intent label to its severity in [0,1].
// Unlisted labels (including the unknown fallback) carry the default weight.
var intentRiskWeights = map[string]float64{
	domain.IntentComplaint: 1.0,
	domain.IntentRequest:   0.8,
	domain.IntentQuestion:  0.6,
	domain.IntentPraise:    0.3,
}

const defaultIntentRiskWeight = 0.4

// RiskIndex combines stage outputs into a single bounded score. Inputs are
// used as produced by the stages: polarity in [-1,1], toxicity and sarcasm
// scores in [0,1].
func RiskIndex(polarity, toxicityScore float64, intent string, sarcasm string, sarcasmScore float64) float64 {
	negativity := 0.0
	if polarity < 0 {
		negativity = -polarity
	}

	sarcasmFactor := 0.0
	if sarcasm == domain.SarcasmSarcastic {
		sarcasmFactor = sarcasmScore
	}

	risk := riskWeightNegativity*negativity +
		riskWeightToxicity*clamp01(toxicityScore) +
		riskWeightIntent*intentRiskWeight(intent) +
		riskWeightSarcasm*sarcasmFactor

	return clamp01(risk)
}

func intentRiskWeight(intent string) float64 {
	if w, ok := intentRiskWeights[intent]; ok {
		return w
	}
	return defaultIntentRiskWeight
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
