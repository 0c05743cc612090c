package enrich

import (
	"context"

	"insight_server/core/domain"
	"insight_server/core/port/out"
	"insight_server/pkg/apperr"
)

// ============================================================================
// Sentiment Stage
// ============================================================================

// SentimentStage maps classifier predictions to a signed polarity.
type SentimentStage struct {
	classifier out.TextClassifier
}

func NewSentimentStage(classifier out.TextClassifier) *SentimentStage {
	return &SentimentStage{classifier: classifier}
}

func (s *SentimentStage) Name() string { return "sentiment" }

func (s *SentimentStage) RunBatch(ctx context.Context, batch SanitizedBatch, batchSize int) ([]SentimentResult, error) {
	return runBatch(batch, fallbackSentiment, func(texts []string) ([]SentimentResult, error) {
		preds, err := s.classifier.ClassifyBatch(ctx, texts, batchSize)
		if err != nil {
			return nil, apperr.StageFailed(s.Name(), err)
		}
		results := make([]SentimentResult, len(preds))
		for i, p := range preds {
			results[i] = deriveSentiment(p)
		}
		return results, nil
	})
}

// Classify is the single-text form. Errors are absorbed into the neutral
// fallback so one bad text never fails a caller-driven loop.
func (s *SentimentStage) Classify(ctx context.Context, text string) SentimentResult {
	results, err := s.RunBatch(ctx, Sanitize([]string{text}), 1)
	if err != nil || len(results) == 0 {
		return fallbackSentiment()
	}
	return results[0]
}

// ============================================================================
// Emotion Stage
// ============================================================================

// EmotionStage ranks the full emotion distribution per text.
type EmotionStage struct {
	classifier out.TextClassifier
}

func NewEmotionStage(classifier out.TextClassifier) *EmotionStage {
	return &EmotionStage{classifier: classifier}
}

func (s *EmotionStage) Name() string { return "emotion" }

func (s *EmotionStage) RunBatch(ctx context.Context, batch SanitizedBatch, batchSize int) ([]EmotionResult, error) {
	return runBatch(batch, fallbackEmotion, func(texts []string) ([]EmotionResult, error) {
		preds, err := s.classifier.ClassifyBatch(ctx, texts, batchSize)
		if err != nil {
			return nil, apperr.StageFailed(s.Name(), err)
		}
		results := make([]EmotionResult, len(preds))
		for i, p := range preds {
			results[i] = deriveEmotion(p)
		}
		return results, nil
	})
}

// Classify is the single-text form with error absorption.
func (s *EmotionStage) Classify(ctx context.Context, text string) EmotionResult {
	results, err := s.RunBatch(ctx, Sanitize([]string{text}), 1)
	if err != nil || len(results) == 0 {
		return fallbackEmotion()
	}
	return results[0]
}

// ============================================================================
// Language Stage
// ============================================================================

// LanguageStage detects the dominant language code per text.
type LanguageStage struct {
	classifier out.TextClassifier
}

func NewLanguageStage(classifier out.TextClassifier) *LanguageStage {
	return &LanguageStage{classifier: classifier}
}

func (s *LanguageStage) Name() string { return "language" }

func (s *LanguageStage) RunBatch(ctx context.Context, batch SanitizedBatch, batchSize int) ([]string, error) {
	return runBatch(batch, fallbackLanguage, func(texts []string) ([]string, error) {
		preds, err := s.classifier.ClassifyBatch(ctx, texts, batchSize)
		if err != nil {
			return nil, apperr.StageFailed(s.Name(), err)
		}
		results := make([]string, len(preds))
		for i, p := range preds {
			results[i] = deriveLanguage(p)
		}
		return results, nil
	})
}

// ============================================================================
// Toxicity Stage
// ============================================================================

// ToxicityStage derives a toxic/safe verdict with the toxic-class score.
type ToxicityStage struct {
	classifier out.TextClassifier
}

func NewToxicityStage(classifier out.TextClassifier) *ToxicityStage {
	return &ToxicityStage{classifier: classifier}
}

func (s *ToxicityStage) Name() string { return "toxicity" }

func (s *ToxicityStage) RunBatch(ctx context.Context, batch SanitizedBatch, batchSize int) ([]ToxicityResult, error) {
	return runBatch(batch, fallbackToxicity, func(texts []string) ([]ToxicityResult, error) {
		preds, err := s.classifier.ClassifyBatch(ctx, texts, batchSize)
		if err != nil {
			return nil, apperr.StageFailed(s.Name(), err)
		}
		results := make([]ToxicityResult, len(preds))
		for i, p := range preds {
			results[i] = deriveToxicity(p)
		}
		return results, nil
	})
}

// ============================================================================
// Sarcasm Stage
// ============================================================================

// SarcasmStage derives a sarcastic/not-sarcastic verdict.
type SarcasmStage struct {
	classifier out.TextClassifier
}

func NewSarcasmStage(classifier out.TextClassifier) *SarcasmStage {
	return &SarcasmStage{classifier: classifier}
}

func (s *SarcasmStage) Name() string { return "sarcasm" }

func (s *SarcasmStage) RunBatch(ctx context.Context, batch SanitizedBatch, batchSize int) ([]SarcasmResult, error) {
	return runBatch(batch, fallbackSarcasm, func(texts []string) ([]SarcasmResult, error) {
		preds, err := s.classifier.ClassifyBatch(ctx, texts, batchSize)
		if err != nil {
			return nil, apperr.StageFailed(s.Name(), err)
		}
		results := make([]SarcasmResult, len(preds))
		for i, p := range preds {
			results[i] = deriveSarcasm(p)
		}
		return results, nil
	})
}

// ============================================================================
// Intent Stage
// ============================================================================

// IntentStage classifies communicative intent over a fixed candidate set.
type IntentStage struct {
	classifier out.ZeroShotClassifier
}

func NewIntentStage(classifier out.ZeroShotClassifier) *IntentStage {
	return &IntentStage{classifier: classifier}
}

func (s *IntentStage) Name() string { return "intent" }

func (s *IntentStage) RunBatch(ctx context.Context, batch SanitizedBatch, batchSize int) ([]IntentResult, error) {
	return runBatch(batch, fallbackIntent, func(texts []string) ([]IntentResult, error) {
		preds, err := s.classifier.ClassifyBatch(ctx, texts, domain.IntentLabels, false, batchSize)
		if err != nil {
			return nil, apperr.StageFailed(s.Name(), err)
		}
		results := make([]IntentResult, len(preds))
		for i, p := range preds {
			results[i] = deriveIntent(p)
		}
		return results, nil
	})
}

// ============================================================================
// Topic and Entity Stage
// ============================================================================

// TopicEntityStage runs multi-label topic extraction and named-entity
// recognition as one logical stage; both degrade together.
type TopicEntityStage struct {
	topics         out.ZeroShotClassifier
	entities       out.TokenClassifier
	topicThreshold float64
}

func NewTopicEntityStage(topics out.ZeroShotClassifier, entities out.TokenClassifier, topicThreshold float64) *TopicEntityStage {
	return &TopicEntityStage{topics: topics, entities: entities, topicThreshold: topicThreshold}
}

func (s *TopicEntityStage) Name() string { return "topics" }

func (s *TopicEntityStage) RunBatch(ctx context.Context, batch SanitizedBatch, batchSize int) ([]TopicEntityResult, error) {
	return runBatch(batch, fallbackTopicEntity, func(texts []string) ([]TopicEntityResult, error) {
		topicPreds, err := s.topics.ClassifyBatch(ctx, texts, domain.TopicLabels, true, batchSize)
		if err != nil {
			return nil, apperr.StageFailed(s.Name(), err)
		}
		spans, err := s.entities.ExtractBatch(ctx, texts, batchSize)
		if err != nil {
			return nil, apperr.StageFailed(s.Name(), err)
		}
		results := make([]TopicEntityResult, len(texts))
		for i := range results {
			result := fallbackTopicEntity()
			if i < len(topicPreds) {
				result.Topics = deriveTopics(topicPreds[i], s.topicThreshold)
			}
			if i < len(spans) {
				result.Entities = deriveEntities(spans[i])
			}
			results[i] = result
		}
		return results, nil
	})
}
