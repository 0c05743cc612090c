package enrich

import (
	"context"
	"strings"

	"insight_server/core/domain"
	"insight_server/pkg/logger"
)

// Assembler joins stage results into per-record insights. It is defensive at
// every index: a missing or short stage slice yields the stage fallback for
// that position instead of a panic.
type Assembler struct {
	log *logger.Logger
}

func NewAssembler(log *logger.Logger) *Assembler {
	if log == nil {
		log = logger.Default()
	}
	return &Assembler{log: log}
}

// Assemble produces at most one insight per input record, in input order.
// Records without a usable identity are skipped and logged; they reduce the
// analyzed count, never abort the chunk.
func (a *Assembler) Assemble(ctx context.Context, records []*domain.SocialComment, results *StageResults) []*domain.CommentInsight {
	insights := make([]*domain.CommentInsight, 0, len(records))
	for i, record := range records {
		if record == nil || strings.TrimSpace(record.ID) == "" {
			a.log.WithContext(ctx).WithField("position", i).
				Warn("skipping record without identity")
			continue
		}

		sentiment := valueAt(results.Sentiment, i, fallbackSentiment)
		emotion := valueAt(results.Emotion, i, fallbackEmotion)
		language := valueAt(results.Language, i, fallbackLanguage)
		intent := valueAt(results.Intent, i, fallbackIntent)
		toxicity := valueAt(results.Toxicity, i, fallbackToxicity)
		sarcasm := valueAt(results.Sarcasm, i, fallbackSarcasm)
		topics := valueAt(results.Topics, i, fallbackTopicEntity)

		risk := RiskIndex(sentiment.Polarity, toxicity.Score, intent.Label, sarcasm.Label, sarcasm.Score)

		insights = append(insights, &domain.CommentInsight{
			ID:       record.ID,
			Username: record.Username,
			Platform: record.Platform,
			Brand:    record.Brand,
			Comment:  record.Comment,

			Sentiment:      sentiment.Label,
			SentimentScore: round(sentiment.Score, 3),
			Polarity:       round(sentiment.Polarity, 3),
			Emotion:        emotion.Top,
			EmotionScores:  emotion.Scores,

			Intent:           intent.Label,
			IntentConfidence: round(intent.Confidence, 3),
			Language:         language,
			Toxicity:         toxicity.Label,
			ToxicityScore:    round(toxicity.Score, 3),
			Sarcasm:          sarcasm.Label,
			SarcasmScore:     round(sarcasm.Score, 3),

			Topics:   topics.Topics,
			Entities: topics.Entities,

			RiskIndex: round(risk, 4),
		})
	}
	return insights
}

// valueAt reads slice position i, or the fallback when the slice is short.
func valueAt[T any](s []T, i int, fallback func() T) T {
	if i >= 0 && i < len(s) {
		return s[i]
	}
	return fallback()
}
