package http

import (
	"github.com/gofiber/fiber/v2"

	"insight_server/core/port/in"
	"insight_server/pkg/response"
)

// SentimentHandler exposes targeted sentiment analysis over HTTP.
type SentimentHandler struct {
	service in.SentimentService
}

func NewSentimentHandler(service in.SentimentService) *SentimentHandler {
	return &SentimentHandler{service: service}
}

func (h *SentimentHandler) Register(app fiber.Router) {
	sentiment := app.Group("/sentiment")
	sentiment.Post("/analyze", h.Analyze)
	sentiment.Post("/jobs", h.EnqueueAnalysis)
}

// Analyze classifies the selected comments and replies synchronously.
// POST /api/v1/sentiment/analyze
func (h *SentimentHandler) Analyze(c *fiber.Ctx) error {
	var req in.SentimentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if req.Empty() {
		return response.BadRequest(c, "commentIds or repliedIds required")
	}

	result, err := h.service.Analyze(c.Context(), &req)
	if err != nil {
		return errorFrom(c, err)
	}

	return response.OKWithMeta(c, fiber.Map{
		"results":         result.Results,
		"total_analyzed":  result.TotalAnalyzed,
		"total_requested": result.TotalRequested,
	}, &response.Meta{
		Total:    result.TotalRequested,
		Analyzed: result.TotalAnalyzed,
	})
}

// EnqueueAnalysis schedules an asynchronous targeted run.
// POST /api/v1/sentiment/jobs
func (h *SentimentHandler) EnqueueAnalysis(c *fiber.Ctx) error {
	var req in.SentimentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if req.Empty() {
		return response.BadRequest(c, "commentIds or repliedIds required")
	}

	jobID, err := h.service.EnqueueAnalysis(c.Context(), &req)
	if err != nil {
		return errorFrom(c, err)
	}
	return response.Accepted(c, fiber.Map{"job_id": jobID})
}
