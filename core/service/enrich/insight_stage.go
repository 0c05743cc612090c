package enrich

import (
	"math"
	"sort"
	"strings"

	"insight_server/core/domain"
	"insight_server/core/port/out"
)

// ============================================================================
// Stage Result Types
// ============================================================================

// SentimentResult is the derived sentiment for one position.
type SentimentResult struct {
	Label    string
	Polarity float64
	Score    float64
}

// EmotionResult is the derived emotion distribution for one position.
type EmotionResult struct {
	Top    string
	Scores []domain.EmotionScore
}

// IntentResult is the derived intent for one position.
type IntentResult struct {
	Label      string
	Confidence float64
}

// ToxicityResult is the derived toxicity verdict for one position.
type ToxicityResult struct {
	Label string
	Score float64
}

// SarcasmResult is the derived sarcasm verdict for one position.
type SarcasmResult struct {
	Label string
	Score float64
}

// TopicEntityResult is the derived topics and entities for one position.
type TopicEntityResult struct {
	Topics   []string
	Entities []string
}

// ============================================================================
// Fallbacks
// ============================================================================

func fallbackSentiment() SentimentResult {
	return SentimentResult{Label: domain.SentimentNeutral}
}

func fallbackEmotion() EmotionResult {
	return EmotionResult{Top: domain.EmotionNeutral, Scores: []domain.EmotionScore{}}
}

func fallbackIntent() IntentResult {
	return IntentResult{Label: domain.IntentUnknown}
}

func fallbackToxicity() ToxicityResult {
	return ToxicityResult{Label: domain.ToxicitySafe}
}

func fallbackSarcasm() SarcasmResult {
	return SarcasmResult{Label: domain.SarcasmNotSarcastic}
}

func fallbackTopicEntity() TopicEntityResult {
	return TopicEntityResult{Topics: []string{}, Entities: []string{}}
}

func fallbackLanguage() string {
	return domain.LanguageUnknown
}

// ============================================================================
// Batch Helper
// ============================================================================

// runBatch seeds one fallback per input position, classifies the valid texts
// in a single capability call, and maps the outputs back onto their original
// positions. The returned slice always has batch.Len() elements; a capability
// error for the whole batch is propagated to the caller.
func runBatch[T any](batch SanitizedBatch, fallback func() T, call func(texts []string) ([]T, error)) ([]T, error) {
	results := make([]T, batch.Len())
	for i := range results {
		results[i] = fallback()
	}

	indices := batch.ValidIndices()
	if len(indices) == 0 {
		return results, nil
	}

	outputs, err := call(batch.ValidTexts())
	if err != nil {
		return nil, err
	}
	for pos, original := range indices {
		if pos < len(outputs) {
			results[original] = outputs[pos]
		}
	}
	return results, nil
}

// ============================================================================
// Derivations
// ============================================================================

func deriveSentiment(preds []out.LabelScore) SentimentResult {
	if len(preds) == 0 {
		return fallbackSentiment()
	}
	label := strings.ToLower(preds[0].Label)
	score := preds[0].Score
	switch label {
	case domain.SentimentPositive:
		return SentimentResult{Label: label, Polarity: score, Score: score}
	case domain.SentimentNegative:
		return SentimentResult{Label: label, Polarity: -score, Score: score}
	default:
		return SentimentResult{Label: domain.SentimentNeutral, Score: score}
	}
}

func deriveEmotion(preds []out.LabelScore) EmotionResult {
	if len(preds) == 0 {
		return fallbackEmotion()
	}
	sorted := make([]out.LabelScore, len(preds))
	copy(sorted, preds)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})
	scores := make([]domain.EmotionScore, len(sorted))
	for i, p := range sorted {
		scores[i] = domain.EmotionScore{
			Emotion: strings.ToLower(p.Label),
			Score:   round(p.Score, 4),
		}
	}
	return EmotionResult{Top: scores[0].Emotion, Scores: scores}
}

func deriveLanguage(preds []out.LabelScore) string {
	if len(preds) == 0 {
		return fallbackLanguage()
	}
	return strings.ToLower(preds[0].Label)
}

func deriveToxicity(preds []out.LabelScore) ToxicityResult {
	if len(preds) == 0 {
		return fallbackToxicity()
	}
	label := strings.ToLower(preds[0].Label)
	score := preds[0].Score
	if label == "toxic" || label == "label_1" {
		return ToxicityResult{Label: domain.ToxicityToxic, Score: score}
	}
	// Non-toxic predictions report the safe-class score; the toxicity score
	// is its complement.
	return ToxicityResult{Label: domain.ToxicitySafe, Score: 1 - score}
}

func deriveSarcasm(preds []out.LabelScore) SarcasmResult {
	if len(preds) == 0 {
		return fallbackSarcasm()
	}
	label := strings.ToLower(preds[0].Label)
	score := preds[0].Score
	// "not_sarcastic" must not match; the sarcastic class label carries the
	// full word "sarcasm".
	if strings.Contains(label, "sarcasm") {
		return SarcasmResult{Label: domain.SarcasmSarcastic, Score: score}
	}
	return SarcasmResult{Label: domain.SarcasmNotSarcastic, Score: score}
}

func deriveIntent(res out.ZeroShotResult) IntentResult {
	if len(res.Labels) == 0 {
		return fallbackIntent()
	}
	confidence := 0.0
	if len(res.Scores) > 0 {
		confidence = res.Scores[0]
	}
	return IntentResult{Label: strings.ToLower(res.Labels[0]), Confidence: confidence}
}

func deriveTopics(res out.ZeroShotResult, threshold float64) []string {
	topics := make([]string, 0, len(res.Labels))
	for i, label := range res.Labels {
		if i < len(res.Scores) && res.Scores[i] >= threshold {
			topics = append(topics, label)
		}
	}
	return topics
}

func deriveEntities(spans []out.EntitySpan) []string {
	seen := make(map[string]struct{}, len(spans))
	entities := make([]string, 0, len(spans))
	for _, span := range spans {
		word := strings.TrimSpace(strings.ReplaceAll(span.Word, "##", ""))
		if word == "" {
			continue
		}
		if _, ok := seen[word]; ok {
			continue
		}
		seen[word] = struct{}{}
		entities = append(entities, word)
	}
	return entities
}

func round(v float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(v*factor) / factor
}
