// Package analysis orchestrates the enrichment pipeline over stored records
// and exposes it through the inbound service ports.
package analysis

import (
	"context"
	"time"

	"github.com/google/uuid"

	"insight_server/core/domain"
	"insight_server/core/port/in"
	"insight_server/core/port/out"
	"insight_server/core/service/enrich"
	"insight_server/pkg/apperr"
	"insight_server/pkg/logger"
)

// =============================================================================
// Social Comment Analysis Service
// =============================================================================

// Service implements in.AnalysisService. Insights are checkpointed to the
// analytics table per chunk; the run report archive and the entity graph are
// best-effort sinks.
type Service struct {
	records  out.SocialCommentRepository
	insights out.InsightRepository
	reports  out.RunReportRepository // optional
	graph    out.EntityGraphStore    // optional
	producer out.JobProducer         // optional, required for EnqueueAnalysis
	runner   *enrich.Runner
	log      *logger.Logger
}

// Deps bundles the service collaborators.
type Deps struct {
	Records  out.SocialCommentRepository
	Insights out.InsightRepository
	Reports  out.RunReportRepository
	Graph    out.EntityGraphStore
	Producer out.JobProducer
	Runner   *enrich.Runner
	Log      *logger.Logger
}

// NewService creates the analysis service.
func NewService(deps Deps) *Service {
	log := deps.Log
	if log == nil {
		log = logger.Default()
	}
	return &Service{
		records:  deps.Records,
		insights: deps.Insights,
		reports:  deps.Reports,
		graph:    deps.Graph,
		producer: deps.Producer,
		runner:   deps.Runner,
		log:      log,
	}
}

// Analyze runs the full pipeline over stored records and persists the
// assembled insights chunk by chunk.
func (s *Service) Analyze(ctx context.Context, limit int) (*in.AnalysisResult, error) {
	records, err := s.records.FindAll(ctx, limit)
	if err != nil {
		return nil, apperr.Database(err)
	}

	result, err := s.runner.Run(ctx, records, func(ctx context.Context, insights []*domain.CommentInsight) error {
		return s.insights.UpsertMany(ctx, insights)
	})
	if err != nil {
		// The report still describes the partial run.
		s.archiveReport(ctx, result.Report)
		return nil, err
	}

	s.archiveReport(ctx, result.Report)
	s.recordMentions(ctx, result.Insights)

	return &in.AnalysisResult{
		TotalRecords:    result.Report.TotalRecords,
		AnalyzedRecords: result.Report.AnalyzedRecords,
		Results:         result.Insights,
		Report:          result.Report,
	}, nil
}

// EnqueueAnalysis schedules an asynchronous run.
func (s *Service) EnqueueAnalysis(ctx context.Context, limit int) (string, error) {
	if s.producer == nil {
		return "", apperr.Internal("job producer not configured")
	}
	job := &out.EnrichmentRunJob{
		JobID:       uuid.NewString(),
		Limit:       limit,
		RequestedAt: time.Now(),
	}
	if err := s.producer.PublishEnrichmentRun(ctx, job); err != nil {
		return "", apperr.Wrap(err, apperr.CodeExternalError, "failed to enqueue analysis", 502)
	}
	s.log.WithContext(ctx).WithField("job_id", job.JobID).WithField("limit", limit).
		Info("enrichment run enqueued")
	return job.JobID, nil
}

func (s *Service) archiveReport(ctx context.Context, report *domain.EnrichmentRunReport) {
	if s.reports == nil || report == nil {
		return
	}
	if err := s.reports.Save(ctx, report); err != nil {
		s.log.WithContext(ctx).WithError(err).WithField("run_id", report.RunID).
			Warn("failed to archive run report")
	}
}

func (s *Service) recordMentions(ctx context.Context, insights []*domain.CommentInsight) {
	if s.graph == nil {
		return
	}
	failed := 0
	for _, insight := range insights {
		if err := s.graph.RecordMentions(ctx, insight); err != nil {
			failed++
			s.log.WithContext(ctx).WithError(err).WithField("insight_id", insight.ID).
				Warn("failed to record entity mentions")
		}
	}
	if failed > 0 {
		s.log.WithContext(ctx).WithField("failed", failed).
			WithField("total", len(insights)).
			Warn("entity mention recording incomplete")
	}
}

var _ in.AnalysisService = (*Service)(nil)
