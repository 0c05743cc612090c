package analysis

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"

	"insight_server/core/domain"
	"insight_server/core/port/in"
	"insight_server/core/port/out"
	"insight_server/core/service/enrich"
	"insight_server/pkg/apperr"
	"insight_server/pkg/cache"
	"insight_server/pkg/logger"
)

// =============================================================================
// Sentiment Service
// =============================================================================

// SentimentService implements in.SentimentService: targeted sentiment and
// emotion analysis for comments and replies selected by identity. Results
// are cached per text so repeated requests skip inference.
type SentimentService struct {
	comments  out.CommentRepository
	replies   out.ReplyRepository
	records   out.SentimentRecordRepository
	sentiment *enrich.SentimentStage
	emotion   *enrich.EmotionStage
	cache     *cache.RedisCache // optional
	cacheTTL  time.Duration
	producer  out.JobProducer // optional, required for EnqueueAnalysis
	log       *logger.Logger
}

// SentimentDeps bundles the service collaborators.
type SentimentDeps struct {
	Comments  out.CommentRepository
	Replies   out.ReplyRepository
	Records   out.SentimentRecordRepository
	Sentiment *enrich.SentimentStage
	Emotion   *enrich.EmotionStage
	Cache     *cache.RedisCache
	CacheTTL  time.Duration
	Producer  out.JobProducer
	Log       *logger.Logger
}

// NewSentimentService creates the sentiment service.
func NewSentimentService(deps SentimentDeps) *SentimentService {
	log := deps.Log
	if log == nil {
		log = logger.Default()
	}
	cacheTTL := deps.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 2 * time.Hour
	}
	return &SentimentService{
		comments:  deps.Comments,
		replies:   deps.Replies,
		records:   deps.Records,
		sentiment: deps.Sentiment,
		emotion:   deps.Emotion,
		cache:     deps.Cache,
		cacheTTL:  cacheTTL,
		producer:  deps.Producer,
		log:       log,
	}
}

// cachedSentiment is the cache payload per analyzed text.
type cachedSentiment struct {
	Sentiment      string                `json:"sentiment"`
	SentimentScore float64               `json:"sentiment_score"`
	TopEmotion     string                `json:"top_emotion"`
	EmotionScores  []domain.EmotionScore `json:"emotion_scores"`
}

// Analyze classifies each selected source text and persists one sentiment
// record per text. Stage errors degrade to neutral fallbacks; persistence
// errors abort.
func (s *SentimentService) Analyze(ctx context.Context, req *in.SentimentRequest) (*in.SentimentResult, error) {
	if req == nil || req.Empty() {
		return nil, apperr.BadRequest("commentIds or repliedIds required")
	}

	comments, err := s.comments.FindByIDs(ctx, req.CommentIDs)
	if err != nil {
		return nil, apperr.Database(err)
	}
	replies, err := s.replies.FindByIDs(ctx, req.RepliedIDs)
	if err != nil {
		return nil, apperr.Database(err)
	}

	results := make([]*domain.SentimentRecord, 0, len(comments)+len(replies))
	for _, comment := range comments {
		record, err := s.analyzeOne(ctx, comment.ID, domain.SourceComment, comment.Text)
		if err != nil {
			return nil, err
		}
		results = append(results, record)
	}
	for _, reply := range replies {
		record, err := s.analyzeOne(ctx, reply.ID, domain.SourceReply, reply.Text)
		if err != nil {
			return nil, err
		}
		results = append(results, record)
	}

	return &in.SentimentResult{
		Results:        results,
		TotalAnalyzed:  len(results),
		TotalRequested: len(req.CommentIDs) + len(req.RepliedIDs),
	}, nil
}

func (s *SentimentService) analyzeOne(ctx context.Context, sourceID string, sourceType domain.SourceType, text string) (*domain.SentimentRecord, error) {
	payload := s.classify(ctx, text)

	record := &domain.SentimentRecord{
		ID:             uuid.NewString(),
		SourceID:       sourceID,
		SourceType:     sourceType,
		Sentiment:      payload.Sentiment,
		SentimentScore: payload.SentimentScore,
		TopEmotion:     payload.TopEmotion,
		EmotionScores:  payload.EmotionScores,
		AnalyzedText:   text,
	}
	if err := s.records.Save(ctx, record); err != nil {
		return nil, apperr.Database(err)
	}
	return record, nil
}

// classify runs the two single-text stages, consulting the cache first.
func (s *SentimentService) classify(ctx context.Context, text string) *cachedSentiment {
	var key string
	if s.cache != nil {
		key = s.cache.TextKey("sentiment", text)
		var hit cachedSentiment
		if ok, err := s.cache.GetJSON(ctx, key, &hit); err == nil && ok {
			return &hit
		}
	}

	sentiment := s.sentiment.Classify(ctx, text)
	emotion := s.emotion.Classify(ctx, text)

	payload := &cachedSentiment{
		Sentiment:      sentiment.Label,
		SentimentScore: round4(sentiment.Score),
		TopEmotion:     emotion.Top,
		EmotionScores:  emotion.Scores,
	}
	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, payload, s.cacheTTL); err != nil {
			s.log.WithContext(ctx).WithError(err).Warn("failed to cache sentiment result")
		}
	}
	return payload
}

// EnqueueAnalysis schedules an asynchronous run.
func (s *SentimentService) EnqueueAnalysis(ctx context.Context, req *in.SentimentRequest) (string, error) {
	if req == nil || req.Empty() {
		return "", apperr.BadRequest("commentIds or repliedIds required")
	}
	if s.producer == nil {
		return "", apperr.Internal("job producer not configured")
	}
	job := &out.SentimentJob{
		JobID:       uuid.NewString(),
		CommentIDs:  req.CommentIDs,
		RepliedIDs:  req.RepliedIDs,
		RequestedAt: time.Now(),
	}
	if err := s.producer.PublishSentimentAnalysis(ctx, job); err != nil {
		return "", apperr.Wrap(err, apperr.CodeExternalError, "failed to enqueue sentiment analysis", 502)
	}
	s.log.WithContext(ctx).WithField("job_id", job.JobID).
		WithField("comments", len(req.CommentIDs)).
		WithField("replies", len(req.RepliedIDs)).
		Info("sentiment analysis enqueued")
	return job.JobID, nil
}

// Stored and returned scores carry four decimals.
func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

var _ in.SentimentService = (*SentimentService)(nil)
