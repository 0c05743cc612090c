// Package http provides the inbound HTTP API.
package http

import (
	"github.com/gofiber/fiber/v2"

	"insight_server/core/port/in"
	"insight_server/pkg/apperr"
	"insight_server/pkg/response"
)

// AnalysisHandler exposes the enrichment pipeline over HTTP.
type AnalysisHandler struct {
	service in.AnalysisService
}

func NewAnalysisHandler(service in.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{service: service}
}

func (h *AnalysisHandler) Register(app fiber.Router) {
	analysis := app.Group("/social-comment-analysis")
	analysis.Get("/", h.Analyze)
	analysis.Post("/jobs", h.EnqueueAnalysis)
}

// Analyze runs the pipeline synchronously over stored records.
// GET /api/v1/social-comment-analysis?limit=100
func (h *AnalysisHandler) Analyze(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 0)
	if limit < 0 {
		return response.BadRequest(c, "limit must be non-negative")
	}

	result, err := h.service.Analyze(c.Context(), limit)
	if err != nil {
		return errorFrom(c, err)
	}

	return response.OKWithMeta(c, fiber.Map{
		"total_records":    result.TotalRecords,
		"analyzed_records": result.AnalyzedRecords,
		"results":          result.Results,
	}, &response.Meta{
		Total:    result.TotalRecords,
		Analyzed: result.AnalyzedRecords,
	})
}

// EnqueueAnalysis schedules an asynchronous run.
// POST /api/v1/social-comment-analysis/jobs
func (h *AnalysisHandler) EnqueueAnalysis(c *fiber.Ctx) error {
	var body struct {
		Limit int `json:"limit"`
	}
	// An empty body enqueues a full run.
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&body); err != nil {
			return response.BadRequest(c, "invalid request body")
		}
	}
	if body.Limit < 0 {
		return response.BadRequest(c, "limit must be non-negative")
	}

	jobID, err := h.service.EnqueueAnalysis(c.Context(), body.Limit)
	if err != nil {
		return errorFrom(c, err)
	}
	return response.Accepted(c, fiber.Map{"job_id": jobID})
}

// errorFrom maps an application error onto the response envelope.
func errorFrom(c *fiber.Ctx, err error) error {
	appErr := apperr.From(err)
	return response.Error(c, appErr.HTTPStatus(), appErr.Code, appErr.Message)
}
