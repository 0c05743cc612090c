package enrich

import (
	"context"
	"sync"

	"github.com/go-pkgz/pool"

	"insight_server/pkg/logger"
)

// ============================================================================
// Stage Set
// ============================================================================

// Stages bundles the constructed pipeline stages. All stages are independent
// of each other; each reads only the sanitized batch.
type Stages struct {
	Sentiment *SentimentStage
	Emotion   *EmotionStage
	Language  *LanguageStage
	Intent    *IntentStage
	Toxicity  *ToxicityStage
	Sarcasm   *SarcasmStage
	Topics    *TopicEntityStage
}

// StageResults holds per-stage output slices, one element per input position.
// Every field is fully populated after RunStages returns: a stage whose whole
// batch failed contributes fallbacks and is listed in Degraded.
type StageResults struct {
	Sentiment []SentimentResult
	Emotion   []EmotionResult
	Language  []string
	Intent    []IntentResult
	Toxicity  []ToxicityResult
	Sarcasm   []SarcasmResult
	Topics    []TopicEntityResult

	Degraded []string
}

// ============================================================================
// Scheduler
// ============================================================================

// Mode selects how stages are dispatched over a chunk.
type Mode string

const (
	ModeSequential Mode = "sequential"
	ModeConcurrent Mode = "concurrent"
)

// DefaultStageWorkers bounds concurrent stage dispatch.
const DefaultStageWorkers = 4

// Scheduler runs all stages over one sanitized chunk. A whole-batch stage
// failure never fails the run; it degrades that stage to fallbacks.
type Scheduler struct {
	mode      Mode
	workers   int
	batchSize int
	log       *logger.Logger
}

func NewScheduler(mode Mode, workers, batchSize int, log *logger.Logger) *Scheduler {
	if mode != ModeSequential {
		mode = ModeConcurrent
	}
	if workers <= 0 {
		workers = DefaultStageWorkers
	}
	if log == nil {
		log = logger.Default()
	}
	return &Scheduler{mode: mode, workers: workers, batchSize: batchSize, log: log}
}

// stageTask wraps one stage invocation. run performs the stage call, writes
// its results field, and on error substitutes fallbacks and reports degraded.
// Each task writes a distinct StageResults field, so tasks only share the
// degraded list.
type stageTask struct {
	name string
	run  func(ctx context.Context)
}

type stageTaskWorker struct{}

func (stageTaskWorker) Do(ctx context.Context, task *stageTask) error {
	task.run(ctx)
	return nil
}

// RunStages executes every stage over the batch and returns fully populated
// results. Output slice lengths always equal batch.Len().
func (s *Scheduler) RunStages(ctx context.Context, batch SanitizedBatch, stages *Stages) *StageResults {
	results := &StageResults{}
	var mu sync.Mutex

	degrade := func(name string, err error) {
		s.log.WithContext(ctx).WithError(err).WithField("stage", name).
			Warn("stage degraded to fallback for whole batch")
		mu.Lock()
		results.Degraded = append(results.Degraded, name)
		mu.Unlock()
	}

	tasks := []*stageTask{
		newStageTask(stages.Sentiment.Name(), batch, fallbackSentiment, &results.Sentiment, degrade,
			func(ctx context.Context) ([]SentimentResult, error) {
				return stages.Sentiment.RunBatch(ctx, batch, s.batchSize)
			}),
		newStageTask(stages.Emotion.Name(), batch, fallbackEmotion, &results.Emotion, degrade,
			func(ctx context.Context) ([]EmotionResult, error) {
				return stages.Emotion.RunBatch(ctx, batch, s.batchSize)
			}),
		newStageTask(stages.Language.Name(), batch, fallbackLanguage, &results.Language, degrade,
			func(ctx context.Context) ([]string, error) {
				return stages.Language.RunBatch(ctx, batch, s.batchSize)
			}),
		newStageTask(stages.Intent.Name(), batch, fallbackIntent, &results.Intent, degrade,
			func(ctx context.Context) ([]IntentResult, error) {
				return stages.Intent.RunBatch(ctx, batch, s.batchSize)
			}),
		newStageTask(stages.Toxicity.Name(), batch, fallbackToxicity, &results.Toxicity, degrade,
			func(ctx context.Context) ([]ToxicityResult, error) {
				return stages.Toxicity.RunBatch(ctx, batch, s.batchSize)
			}),
		newStageTask(stages.Sarcasm.Name(), batch, fallbackSarcasm, &results.Sarcasm, degrade,
			func(ctx context.Context) ([]SarcasmResult, error) {
				return stages.Sarcasm.RunBatch(ctx, batch, s.batchSize)
			}),
		newStageTask(stages.Topics.Name(), batch, fallbackTopicEntity, &results.Topics, degrade,
			func(ctx context.Context) ([]TopicEntityResult, error) {
				return stages.Topics.RunBatch(ctx, batch, s.batchSize)
			}),
	}

	if s.mode == ModeSequential {
		for _, task := range tasks {
			task.run(ctx)
		}
		return results
	}

	group := pool.New[*stageTask](s.workers, stageTaskWorker{}).WithContinueOnError()
	if err := group.Go(ctx); err != nil {
		// Pool startup failure: fall back to in-place sequential execution.
		s.log.WithContext(ctx).WithError(err).Warn("stage pool start failed, running sequentially")
		for _, task := range tasks {
			task.run(ctx)
		}
		return results
	}
	for _, task := range tasks {
		group.Submit(task)
	}
	if err := group.Close(ctx); err != nil {
		s.log.WithContext(ctx).WithError(err).Warn("stage pool close reported error")
	}
	return results
}

// newStageTask builds the task closure for one stage: call, assign, or
// degrade to N fallbacks on whole-batch error.
func newStageTask[T any](
	name string,
	batch SanitizedBatch,
	fallback func() T,
	dst *[]T,
	degrade func(name string, err error),
	call func(ctx context.Context) ([]T, error),
) *stageTask {
	return &stageTask{
		name: name,
		run: func(ctx context.Context) {
			out, err := call(ctx)
			if err != nil {
				out = make([]T, batch.Len())
				for i := range out {
					out[i] = fallback()
				}
				degrade(name, err)
			}
			*dst = out
		},
	}
}
