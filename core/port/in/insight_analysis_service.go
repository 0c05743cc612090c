package in

import (
	"context"

	"insight_server/core/domain"
)

// AnalysisResult is the response of one synchronous enrichment run.
type AnalysisResult struct {
	TotalRecords    int                         `json:"total_records"`
	AnalyzedRecords int                         `json:"analyzed_records"`
	Results         []*domain.CommentInsight    `json:"results"`
	Report          *domain.EnrichmentRunReport `json:"-"`
}

// AnalysisService drives the full enrichment pipeline over stored records.
type AnalysisService interface {
	// Analyze fetches records, enriches them, and persists the insights.
	// limit <= 0 analyzes every stored record.
	Analyze(ctx context.Context, limit int) (*AnalysisResult, error)

	// EnqueueAnalysis schedules an asynchronous run and returns its job id.
	EnqueueAnalysis(ctx context.Context, limit int) (string, error)
}

// SentimentRequest selects comments and replies by their identities.
type SentimentRequest struct {
	CommentIDs []string `json:"commentIds"`
	RepliedIDs []string `json:"repliedIds"`
}

// Empty reports whether the request selects nothing.
func (r *SentimentRequest) Empty() bool {
	return len(r.CommentIDs) == 0 && len(r.RepliedIDs) == 0
}

// SentimentResult is the response of one targeted sentiment run.
type SentimentResult struct {
	Results        []*domain.SentimentRecord `json:"results"`
	TotalAnalyzed  int                       `json:"total_analyzed"`
	TotalRequested int                       `json:"total_requested"`
}

// SentimentService analyzes specific comments and replies for sentiment and
// emotion, persisting one record per analyzed text.
type SentimentService interface {
	Analyze(ctx context.Context, req *SentimentRequest) (*SentimentResult, error)

	// EnqueueAnalysis schedules an asynchronous run and returns its job id.
	EnqueueAnalysis(ctx context.Context, req *SentimentRequest) (string, error)
}
