package worker

import (
	"context"

	"insight_server/core/port/in"
	"insight_server/core/port/out"
	"insight_server/pkg/logger"
)

// EnrichProcessor executes enrichment jobs against the core services.
type EnrichProcessor struct {
	analysis  in.AnalysisService
	sentiment in.SentimentService
	log       *logger.Logger
}

func NewEnrichProcessor(analysis in.AnalysisService, sentiment in.SentimentService, log *logger.Logger) *EnrichProcessor {
	if log == nil {
		log = logger.Default()
	}
	return &EnrichProcessor{analysis: analysis, sentiment: sentiment, log: log}
}

// ProcessRun executes a full pipeline run job.
func (p *EnrichProcessor) ProcessRun(ctx context.Context, msg *Message) error {
	job, err := ParsePayload[out.EnrichmentRunJob](msg)
	if err != nil {
		return err
	}

	result, err := p.analysis.Analyze(ctx, job.Limit)
	if err != nil {
		return err
	}

	p.log.WithContext(ctx).
		WithField("job_id", job.JobID).
		WithField("total_records", result.TotalRecords).
		WithField("analyzed_records", result.AnalyzedRecords).
		Info("enrichment run job finished")
	return nil
}

// ProcessSentiment executes a targeted sentiment job.
func (p *EnrichProcessor) ProcessSentiment(ctx context.Context, msg *Message) error {
	job, err := ParsePayload[out.SentimentJob](msg)
	if err != nil {
		return err
	}

	result, err := p.sentiment.Analyze(ctx, &in.SentimentRequest{
		CommentIDs: job.CommentIDs,
		RepliedIDs: job.RepliedIDs,
	})
	if err != nil {
		return err
	}

	p.log.WithContext(ctx).
		WithField("job_id", job.JobID).
		WithField("total_requested", result.TotalRequested).
		WithField("total_analyzed", result.TotalAnalyzed).
		Info("sentiment job finished")
	return nil
}
