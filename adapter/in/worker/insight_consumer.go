package worker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"insight_server/adapter/out/messaging"
)

// ======
// Redis Streams Consumer
// ======

// streamJobTypes maps a stream name to the job type it carries.
var streamJobTypes = map[string]JobType{
	messaging.StreamEnrichmentRun: JobEnrichmentRun,
	messaging.StreamSentiment:     JobSentimentAnalyze,
}

// StreamConsumer reads enrichment jobs from Redis Streams and feeds them to
// the worker pool. Entries are acked on submission: once a job is in the
// pool, retries belong to the pool, and a crashed consumer's unacked entries
// come back through the stale-claim sweep.
type StreamConsumer struct {
	client   *redis.Client
	group    string
	consumer string
	streams  []string
	pool     *Pool
	log      zerolog.Logger

	readCount  int64
	readBlock  time.Duration
	sweepEvery time.Duration
	staleAfter time.Duration
	maxRetries int
}

// ConsumerConfig holds stream consumer configuration.
type ConsumerConfig struct {
	Group    string
	Consumer string
	Streams  []string

	ReadCount  int64
	ReadBlock  time.Duration
	SweepEvery time.Duration
	StaleAfter time.Duration
	MaxRetries int
}

// NewStreamConsumer creates a stream consumer bound to a worker pool.
func NewStreamConsumer(client *redis.Client, pool *Pool, cfg *ConsumerConfig, log zerolog.Logger) *StreamConsumer {
	c := &StreamConsumer{
		client:     client,
		group:      cfg.Group,
		consumer:   cfg.Consumer,
		streams:    cfg.Streams,
		pool:       pool,
		log:        log.With().Str("component", "stream_consumer").Logger(),
		readCount:  cfg.ReadCount,
		readBlock:  cfg.ReadBlock,
		sweepEvery: cfg.SweepEvery,
		staleAfter: cfg.StaleAfter,
		maxRetries: cfg.MaxRetries,
	}
	if len(c.streams) == 0 {
		c.streams = []string{messaging.StreamEnrichmentRun, messaging.StreamSentiment}
	}
	if c.readCount <= 0 {
		c.readCount = 10
	}
	if c.readBlock <= 0 {
		c.readBlock = 5 * time.Second
	}
	if c.sweepEvery <= 0 {
		c.sweepEvery = 30 * time.Second
	}
	if c.staleAfter <= 0 {
		c.staleAfter = 2 * time.Minute
	}
	if c.maxRetries <= 0 {
		c.maxRetries = 3
	}
	return c
}

// Run consumes until ctx is cancelled.
func (c *StreamConsumer) Run(ctx context.Context) error {
	c.log.Info().
		Str("group", c.group).
		Str("consumer", c.consumer).
		Strs("streams", c.streams).
		Msg("stream consumer starting")

	for _, stream := range c.streams {
		c.ensureGroup(ctx, stream)
	}

	go c.sweepLoop(ctx)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.consumeOnce(ctx); err != nil && err != redis.Nil {
			c.log.Error().Err(err).Msg("stream read failed")
			time.Sleep(time.Second)
		}
	}
}

// consumeOnce blocks for one XREADGROUP round and submits what it got.
func (c *StreamConsumer) consumeOnce(ctx context.Context) error {
	ids := make([]string, 0, len(c.streams)*2)
	for range c.streams {
		ids = append(ids, ">")
	}

	result, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    c.group,
		Consumer: c.consumer,
		Streams:  append(append([]string{}, c.streams...), ids...),
		Count:    c.readCount,
		Block:    c.readBlock,
	}).Result()
	if err != nil {
		return err
	}

	for _, stream := range result {
		for _, entry := range stream.Messages {
			c.submit(ctx, stream.Stream, entry)
		}
	}
	return nil
}

// submit decodes one stream entry, hands it to the pool, and acks it.
func (c *StreamConsumer) submit(ctx context.Context, stream string, entry redis.XMessage) {
	if err := c.dispatch(stream, entry); err != nil {
		c.log.Error().Err(err).Str("stream", stream).Str("id", entry.ID).
			Msg("dropping undispatchable entry")
		return
	}
	if err := c.client.XAck(ctx, stream, c.group, entry.ID).Err(); err != nil {
		c.log.Error().Err(err).Str("stream", stream).Str("id", entry.ID).
			Msg("ack failed after submission")
	}
}

func (c *StreamConsumer) dispatch(stream string, entry redis.XMessage) error {
	jobType, ok := streamJobTypes[stream]
	if !ok {
		return fmt.Errorf("no job type registered for stream %s", stream)
	}

	raw, ok := entry.Values["data"].(string)
	if !ok {
		return fmt.Errorf("entry %s has no data field", entry.ID)
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return fmt.Errorf("decode entry %s: %w", entry.ID, err)
	}

	job := NewMessage(jobType, payload)
	job.ID = entry.ID

	if !c.pool.Submit(job) {
		return fmt.Errorf("worker pool not accepting jobs")
	}
	return nil
}

// sweepLoop periodically reclaims entries another consumer read but never
// acked (crash between read and submit).
func (c *StreamConsumer) sweepLoop(ctx context.Context) {
	ticker := time.NewTicker(c.sweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, stream := range c.streams {
				c.reclaimStale(ctx, stream)
			}
		}
	}
}

func (c *StreamConsumer) reclaimStale(ctx context.Context, stream string) {
	pending, err := c.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: stream,
		Group:  c.group,
		Start:  "-",
		End:    "+",
		Count:  100,
	}).Result()
	if err != nil {
		if err != redis.Nil {
			c.log.Error().Err(err).Str("stream", stream).Msg("pending lookup failed")
		}
		return
	}

	for _, p := range pending {
		if p.Idle < c.staleAfter {
			continue
		}

		if int(p.RetryCount) >= c.maxRetries {
			if err := c.park(ctx, stream, p.ID); err != nil {
				c.log.Error().Err(err).Str("id", p.ID).Msg("failed to park exhausted entry")
			}
			c.client.XAck(ctx, stream, c.group, p.ID)
			continue
		}

		claimed, err := c.client.XClaim(ctx, &redis.XClaimArgs{
			Stream:   stream,
			Group:    c.group,
			Consumer: c.consumer,
			MinIdle:  c.staleAfter,
			Messages: []string{p.ID},
		}).Result()
		if err != nil {
			c.log.Error().Err(err).Str("id", p.ID).Msg("claim failed")
			continue
		}

		for _, entry := range claimed {
			c.log.Info().Str("stream", stream).Str("id", entry.ID).
				Dur("idle", p.Idle).Int64("delivery_count", p.RetryCount).
				Msg("reclaimed stale entry")
			c.submit(ctx, stream, entry)
		}
	}
}

// park copies an exhausted entry onto dlq:{stream} with failure metadata so
// operators can inspect and replay it.
func (c *StreamConsumer) park(ctx context.Context, stream, entryID string) error {
	entries, err := c.client.XRange(ctx, stream, entryID, entryID).Result()
	if err != nil {
		return fmt.Errorf("read entry for DLQ: %w", err)
	}
	if len(entries) == 0 {
		return fmt.Errorf("entry %s no longer in stream %s", entryID, stream)
	}

	values := map[string]any{
		"origin_stream": stream,
		"origin_id":     entryID,
		"parked_at":     time.Now().UTC().Format(time.RFC3339),
		"consumer":      c.consumer,
	}
	for k, v := range entries[0].Values {
		values["origin_"+k] = v
	}

	if err := c.client.XAdd(ctx, &redis.XAddArgs{
		Stream: "dlq:" + stream,
		Values: values,
	}).Err(); err != nil {
		return fmt.Errorf("append to DLQ: %w", err)
	}

	c.log.Warn().Str("stream", stream).Str("id", entryID).
		Msg("entry parked on DLQ after exhausting deliveries")
	return nil
}

func (c *StreamConsumer) ensureGroup(ctx context.Context, stream string) {
	err := c.client.XGroupCreateMkStream(ctx, stream, c.group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		c.log.Warn().Err(err).Str("stream", stream).Msg("consumer group creation failed")
	}
}
