package out

import (
	"context"
	"time"
)

// =============================================================================
// Async Jobs
// =============================================================================

// EnrichmentRunJob asks a worker to run the full pipeline over the stored
// records.
type EnrichmentRunJob struct {
	JobID       string    `json:"job_id"`
	Limit       int       `json:"limit,omitempty"`
	RequestedAt time.Time `json:"requested_at"`
}

// SentimentJob asks a worker to analyze specific comments and replies.
type SentimentJob struct {
	JobID       string    `json:"job_id"`
	CommentIDs  []string  `json:"comment_ids,omitempty"`
	RepliedIDs  []string  `json:"replied_ids,omitempty"`
	RequestedAt time.Time `json:"requested_at"`
}

// JobProducer enqueues enrichment work for the worker side.
type JobProducer interface {
	PublishEnrichmentRun(ctx context.Context, job *EnrichmentRunJob) error
	PublishSentimentAnalysis(ctx context.Context, job *SentimentJob) error
}
