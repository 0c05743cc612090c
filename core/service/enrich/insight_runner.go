package enrich

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"insight_server/core/domain"
	"insight_server/pkg/apperr"
	"insight_server/pkg/logger"
)

// DefaultChunkSize bounds how many records enter one scheduler pass.
const DefaultChunkSize = 64

// ChunkHook runs after each chunk's insights are assembled, before the next
// chunk starts. A hook error aborts the run; already-delivered chunks stay
// delivered.
type ChunkHook func(ctx context.Context, insights []*domain.CommentInsight) error

// RunResult is the outcome of one full pipeline run.
type RunResult struct {
	Insights []*domain.CommentInsight
	Report   *domain.EnrichmentRunReport
}

// Runner drives the chunked pipeline: sanitize, schedule stages, assemble,
// checkpoint. Records keep their global input order in the output.
type Runner struct {
	stages    *Stages
	scheduler *Scheduler
	assembler *Assembler
	chunkSize int
	workerID  string
	log       *logger.Logger
}

func NewRunner(stages *Stages, scheduler *Scheduler, assembler *Assembler, chunkSize int, workerID string, log *logger.Logger) *Runner {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if log == nil {
		log = logger.Default()
	}
	return &Runner{
		stages:    stages,
		scheduler: scheduler,
		assembler: assembler,
		chunkSize: chunkSize,
		workerID:  workerID,
		log:       log,
	}
}

// Run enriches the records chunk by chunk. onChunk may be nil; when set, its
// error is fatal for the remainder of the run.
func (r *Runner) Run(ctx context.Context, records []*domain.SocialComment, onChunk ChunkHook) (*RunResult, error) {
	started := time.Now()
	report := &domain.EnrichmentRunReport{
		RunID:        uuid.NewString(),
		WorkerID:     r.workerID,
		TotalRecords: len(records),
		StartedAt:    started,
	}

	log := r.log.WithContext(ctx).WithField("run_id", report.RunID)
	log.WithField("total_records", len(records)).
		WithField("chunk_size", r.chunkSize).
		Info("enrichment run started")

	insights := make([]*domain.CommentInsight, 0, len(records))
	degraded := make(map[string]struct{})

	for offset := 0; offset < len(records); offset += r.chunkSize {
		end := offset + r.chunkSize
		if end > len(records) {
			end = len(records)
		}
		chunk := records[offset:end]
		report.Chunks++

		texts := make([]string, len(chunk))
		for i, record := range chunk {
			if record != nil {
				texts[i] = record.Comment
			}
		}

		batch := Sanitize(texts)
		results := r.scheduler.RunStages(ctx, batch, r.stages)
		for _, stage := range results.Degraded {
			degraded[stage] = struct{}{}
		}

		chunkInsights := r.assembler.Assemble(ctx, chunk, results)
		if onChunk != nil {
			if err := onChunk(ctx, chunkInsights); err != nil {
				report.DegradedStages = sortedKeys(degraded)
				report.AnalyzedRecords = len(insights)
				report.DurationMs = time.Since(started).Milliseconds()
				log.WithError(err).WithField("chunk", report.Chunks).
					Error("chunk checkpoint failed, aborting run")
				return &RunResult{Insights: insights, Report: report}, apperr.PersistenceFailed(err)
			}
		}
		insights = append(insights, chunkInsights...)
	}

	report.AnalyzedRecords = len(insights)
	report.DegradedStages = sortedKeys(degraded)
	report.DurationMs = time.Since(started).Milliseconds()

	log.WithField("analyzed_records", report.AnalyzedRecords).
		WithField("chunks", report.Chunks).
		WithField("degraded_stages", report.DegradedStages).
		WithDuration(time.Since(started)).
		Info("enrichment run finished")

	return &RunResult{Insights: insights, Report: report}, nil
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
