package out

import (
	"context"

	"insight_server/core/domain"
)

// =============================================================================
// Insight Sinks
// =============================================================================

// InsightRepository persists assembled insights. Upserts are keyed by the
// source record identity: an existing row for the same identity gets its
// derived fields replaced and last_modified_date bumped; otherwise a new row
// is inserted with a generated id and created_date.
type InsightRepository interface {
	UpsertByIdentity(ctx context.Context, insight *domain.CommentInsight) error
	UpsertMany(ctx context.Context, insights []*domain.CommentInsight) error
}

// SentimentRecordRepository persists single-text sentiment analysis rows.
type SentimentRecordRepository interface {
	Save(ctx context.Context, record *domain.SentimentRecord) error
}

// RunReportRepository archives enrichment run reports.
type RunReportRepository interface {
	Save(ctx context.Context, report *domain.EnrichmentRunReport) error
	FindRecent(ctx context.Context, limit int) ([]*domain.EnrichmentRunReport, error)
}

// EntityGraphStore records which comments mention which entities and topics.
// Optional collaborator; failures are logged, never fatal to a run.
type EntityGraphStore interface {
	RecordMentions(ctx context.Context, insight *domain.CommentInsight) error
	Close(ctx context.Context) error
}
