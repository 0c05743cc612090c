// Package messaging provides message queue adapters.
package messaging

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"insight_server/core/port/out"
)

// Stream names
const (
	StreamEnrichmentRun = "insight:enrichment:run"
	StreamSentiment     = "insight:sentiment:analyze"
)

// RedisProducer implements out.JobProducer using Redis Streams.
type RedisProducer struct {
	client *redis.Client
}

// NewRedisProducer creates a new RedisProducer.
func NewRedisProducer(client *redis.Client) *RedisProducer {
	return &RedisProducer{client: client}
}

// PublishEnrichmentRun publishes a full pipeline run job.
func (p *RedisProducer) PublishEnrichmentRun(ctx context.Context, job *out.EnrichmentRunJob) error {
	return p.publish(ctx, StreamEnrichmentRun, job)
}

// PublishSentimentAnalysis publishes a targeted sentiment analysis job.
func (p *RedisProducer) PublishSentimentAnalysis(ctx context.Context, job *out.SentimentJob) error {
	return p.publish(ctx, StreamSentiment, job)
}

// publish publishes a job to a stream.
func (p *RedisProducer) publish(ctx context.Context, stream string, job interface{}) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		ID:     "*",
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", stream, err)
	}
	return nil
}

// Ensure RedisProducer implements out.JobProducer
var _ out.JobProducer = (*RedisProducer)(nil)
