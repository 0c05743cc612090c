package persistence

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"insight_server/core/domain"
)

// =============================================================================
// Sentiment Record Adapter (PostgreSQL)
// =============================================================================

// SentimentAdapter implements out.SentimentRecordRepository over the
// sentiment_analysis table. Rows are append-only; each analysis of a source
// record inserts a new row.
type SentimentAdapter struct {
	db *sqlx.DB
}

// NewSentimentAdapter creates a new SentimentAdapter.
func NewSentimentAdapter(db *sqlx.DB) *SentimentAdapter {
	return &SentimentAdapter{db: db}
}

// Save inserts one sentiment analysis row. A missing id is generated.
func (a *SentimentAdapter) Save(ctx context.Context, record *domain.SentimentRecord) error {
	if record == nil || record.SourceID == "" {
		return ErrInvalidInput
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}

	emotionScores, err := json.Marshal(record.EmotionScores)
	if err != nil {
		return fmt.Errorf("marshal emotion scores: %w", err)
	}

	query := `
		INSERT INTO sentiment_analysis (
			id, source_id, source_type, sentiment, sentiment_score,
			top_emotion, emotion_scores, analyzed_text, created_date
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING created_date`

	if err := a.db.QueryRowxContext(ctx, query,
		record.ID, record.SourceID, string(record.SourceType),
		record.Sentiment, record.SentimentScore,
		record.TopEmotion, emotionScores, record.AnalyzedText,
	).Scan(&record.CreatedAt); err != nil {
		return fmt.Errorf("insert sentiment record for %s: %w", record.SourceID, err)
	}
	return nil
}
