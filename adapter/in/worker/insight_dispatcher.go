package worker

import (
	"context"

	"insight_server/pkg/logger"
)

// Handler routes messages to their processor.
type Handler struct {
	enrich *EnrichProcessor
}

func NewHandler(enrich *EnrichProcessor) *Handler {
	return &Handler{enrich: enrich}
}

func (h *Handler) Process(ctx context.Context, msg *Message) error {
	logger.Debug("processing message: %s", msg.Type)

	switch msg.Type {
	case JobEnrichmentRun:
		return h.enrich.ProcessRun(ctx, msg)
	case JobSentimentAnalyze:
		return h.enrich.ProcessSentiment(ctx, msg)
	default:
		logger.Warn("unknown job type: %s", msg.Type)
		return nil
	}
}
