package enrich

import (
	"math"
	"testing"

	"insight_server/core/domain"
)

func TestRiskIndex(t *testing.T) {
	tests := []struct {
		name         string
		polarity     float64
		toxicity     float64
		intent       string
		sarcasm      string
		sarcasmScore float64
		want         float64
	}{
		{
			name:     "hostile complaint scores high",
			polarity: -0.9, toxicity: 0.8,
			intent:  domain.IntentComplaint,
			sarcasm: domain.SarcasmSarcastic, sarcasmScore: 0.7,
			want: 0.4*0.9 + 0.3*0.8 + 0.2*1.0 + 0.1*0.7,
		},
		{
			name:     "friendly praise scores low",
			polarity: 0.95, toxicity: 0.02,
			intent:  domain.IntentPraise,
			sarcasm: domain.SarcasmNotSarcastic, sarcasmScore: 0.9,
			want: 0.3*0.02 + 0.2*0.3,
		},
		{
			name:     "positive polarity contributes nothing",
			polarity: 0.5, toxicity: 0,
			intent:  domain.IntentStatement,
			sarcasm: domain.SarcasmNotSarcastic,
			want:    0.2 * 0.4,
		},
		{
			name:     "unknown intent uses default weight",
			polarity: 0, toxicity: 0,
			intent:  domain.IntentUnknown,
			sarcasm: domain.SarcasmNotSarcastic,
			want:    0.2 * 0.4,
		},
		{
			name:     "sarcasm score ignored when not sarcastic",
			polarity: 0, toxicity: 0,
			intent:  domain.IntentQuestion,
			sarcasm: domain.SarcasmNotSarcastic, sarcasmScore: 0.99,
			want: 0.2 * 0.6,
		},
		{
			name:     "out of range toxicity is clamped",
			polarity: 0, toxicity: 1.8,
			intent:  domain.IntentStatement,
			sarcasm: domain.SarcasmNotSarcastic,
			want:    0.3*1.0 + 0.2*0.4,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RiskIndex(tt.polarity, tt.toxicity, tt.intent, tt.sarcasm, tt.sarcasmScore)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("RiskIndex() = %v, want %v", got, tt.want)
			}
			if got < 0 || got > 1 {
				t.Errorf("RiskIndex() = %v, out of [0,1]", got)
			}
		})
	}
}

func TestRiskIndexBounded(t *testing.T) {
	// Worst case on every factor must still stay within the unit interval.
	got := RiskIndex(-1, 1, domain.IntentComplaint, domain.SarcasmSarcastic, 1)
	if got < 0 || got > 1 {
		t.Fatalf("RiskIndex() = %v, out of [0,1]", got)
	}
	if math.Abs(got-1.0) > 1e-9 {
		t.Errorf("worst case = %v, want 1.0", got)
	}
}

func TestIntentRiskWeights(t *testing.T) {
	tests := []struct {
		intent string
		want   float64
	}{
		{domain.IntentComplaint, 1.0},
		{domain.IntentRequest, 0.8},
		{domain.IntentQuestion, 0.6},
		{domain.IntentPraise, 0.3},
		{domain.IntentStatement, 0.4},
		{domain.IntentUnknown, 0.4},
		{"gibberish", 0.4},
	}
	for _, tt := range tests {
		t.Run(tt.intent, func(t *testing.T) {
			if got := intentRiskWeight(tt.intent); got != tt.want {
				t.Errorf("intentRiskWeight(%q) = %v, want %v", tt.intent, got, tt.want)
			}
		})
	}
}
