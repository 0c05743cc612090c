package persistence

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"insight_server/core/domain"
)

// =============================================================================
// Analytics Adapter (PostgreSQL)
// =============================================================================

// AnalyticsAdapter implements out.InsightRepository over the
// media_analysis_analytics table. Rows are keyed by the source record
// identity; a re-run replaces earlier derived fields instead of merging.
type AnalyticsAdapter struct {
	db *sqlx.DB
}

// NewAnalyticsAdapter creates a new AnalyticsAdapter.
func NewAnalyticsAdapter(db *sqlx.DB) *AnalyticsAdapter {
	return &AnalyticsAdapter{db: db}
}

const upsertInsightQuery = `
	INSERT INTO media_analysis_analytics (
		id, social_comment_analysis_id, username, platform, brand, comment,
		sentiment, sentiment_score, polarity, emotion, emotion_scores,
		intent, intent_confidence, language,
		toxicity, toxicity_score, sarcasm, sarcasm_score,
		topics, entities, risk_index,
		created_date, last_modified_date
	) VALUES (
		$1, $2, $3, $4, $5, $6,
		$7, $8, $9, $10, $11,
		$12, $13, $14,
		$15, $16, $17, $18,
		$19, $20, $21,
		NOW(), NOW()
	)
	ON CONFLICT (social_comment_analysis_id) DO UPDATE SET
		username = EXCLUDED.username,
		platform = EXCLUDED.platform,
		brand = EXCLUDED.brand,
		comment = EXCLUDED.comment,
		sentiment = EXCLUDED.sentiment,
		sentiment_score = EXCLUDED.sentiment_score,
		polarity = EXCLUDED.polarity,
		emotion = EXCLUDED.emotion,
		emotion_scores = EXCLUDED.emotion_scores,
		intent = EXCLUDED.intent,
		intent_confidence = EXCLUDED.intent_confidence,
		language = EXCLUDED.language,
		toxicity = EXCLUDED.toxicity,
		toxicity_score = EXCLUDED.toxicity_score,
		sarcasm = EXCLUDED.sarcasm,
		sarcasm_score = EXCLUDED.sarcasm_score,
		topics = EXCLUDED.topics,
		entities = EXCLUDED.entities,
		risk_index = EXCLUDED.risk_index,
		last_modified_date = NOW()`

// UpsertByIdentity writes one insight row.
func (a *AnalyticsAdapter) UpsertByIdentity(ctx context.Context, insight *domain.CommentInsight) error {
	if insight == nil || insight.ID == "" {
		return ErrInvalidInput
	}
	args, err := insightArgs(insight)
	if err != nil {
		return err
	}
	if _, err := a.db.ExecContext(ctx, upsertInsightQuery, args...); err != nil {
		return fmt.Errorf("upsert insight %s: %w", insight.ID, err)
	}
	return nil
}

// UpsertMany writes a chunk of insights in one transaction so a chunk
// checkpoint is all-or-nothing.
func (a *AnalyticsAdapter) UpsertMany(ctx context.Context, insights []*domain.CommentInsight) error {
	if len(insights) == 0 {
		return nil
	}
	tx, err := a.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert tx: %w", err)
	}
	defer tx.Rollback()

	for _, insight := range insights {
		if insight == nil || insight.ID == "" {
			continue
		}
		args, err := insightArgs(insight)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, upsertInsightQuery, args...); err != nil {
			return fmt.Errorf("upsert insight %s: %w", insight.ID, err)
		}
	}
	return tx.Commit()
}

func insightArgs(insight *domain.CommentInsight) ([]any, error) {
	emotionScores, err := json.Marshal(insight.EmotionScores)
	if err != nil {
		return nil, fmt.Errorf("marshal emotion scores: %w", err)
	}
	return []any{
		uuid.NewString(), insight.ID,
		nullStr(insight.Username), nullStr(insight.Platform), nullStr(insight.Brand), insight.Comment,
		insight.Sentiment, insight.SentimentScore, insight.Polarity, insight.Emotion, emotionScores,
		insight.Intent, insight.IntentConfidence, insight.Language,
		insight.Toxicity, insight.ToxicityScore, insight.Sarcasm, insight.SarcasmScore,
		pq.Array(insight.Topics), pq.Array(insight.Entities), insight.RiskIndex,
	}, nil
}
