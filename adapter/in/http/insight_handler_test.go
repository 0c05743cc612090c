package http

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"

	"insight_server/core/domain"
	"insight_server/core/port/in"
	"insight_server/pkg/apperr"
)

type stubAnalysisService struct {
	result   *in.AnalysisResult
	jobID    string
	err      error
	gotLimit int
}

func (s *stubAnalysisService) Analyze(_ context.Context, limit int) (*in.AnalysisResult, error) {
	s.gotLimit = limit
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubAnalysisService) EnqueueAnalysis(_ context.Context, limit int) (string, error) {
	s.gotLimit = limit
	if s.err != nil {
		return "", s.err
	}
	return s.jobID, nil
}

type stubSentimentService struct {
	result *in.SentimentResult
	jobID  string
	err    error
	gotReq *in.SentimentRequest
}

func (s *stubSentimentService) Analyze(_ context.Context, req *in.SentimentRequest) (*in.SentimentResult, error) {
	s.gotReq = req
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubSentimentService) EnqueueAnalysis(_ context.Context, req *in.SentimentRequest) (string, error) {
	s.gotReq = req
	if s.err != nil {
		return "", s.err
	}
	return s.jobID, nil
}

func newTestApp(analysis in.AnalysisService, sentiment in.SentimentService) *fiber.App {
	app := fiber.New()
	api := app.Group("/api/v1")
	NewAnalysisHandler(analysis).Register(api)
	NewSentimentHandler(sentiment).Register(api)
	return app
}

func decodeBody(t *testing.T, body io.Reader) map[string]any {
	t.Helper()
	raw, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("decode body %s: %v", raw, err)
	}
	return decoded
}

func TestAnalysisEndpoint(t *testing.T) {
	svc := &stubAnalysisService{result: &in.AnalysisResult{
		TotalRecords:    2,
		AnalyzedRecords: 2,
		Results: []*domain.CommentInsight{
			{ID: "a", Sentiment: "negative", RiskIndex: 0.61},
			{ID: "b", Sentiment: "positive", RiskIndex: 0.05},
		},
	}}
	app := newTestApp(svc, &stubSentimentService{})

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/social-comment-analysis/?limit=2", nil))
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if svc.gotLimit != 2 {
		t.Errorf("limit = %d, want 2", svc.gotLimit)
	}

	body := decodeBody(t, resp.Body)
	if body["success"] != true {
		t.Errorf("success = %v", body["success"])
	}
	data := body["data"].(map[string]any)
	if data["total_records"].(float64) != 2 || data["analyzed_records"].(float64) != 2 {
		t.Errorf("counts = %v/%v", data["analyzed_records"], data["total_records"])
	}
}

func TestAnalysisEndpointServiceError(t *testing.T) {
	svc := &stubAnalysisService{err: apperr.PersistenceFailed(io.ErrUnexpectedEOF)}
	app := newTestApp(svc, &stubSentimentService{})

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/social-comment-analysis/", nil))
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	if resp.StatusCode != 500 {
		t.Errorf("status = %d, want 500", resp.StatusCode)
	}
	body := decodeBody(t, resp.Body)
	if body["success"] != false {
		t.Errorf("success = %v, want false", body["success"])
	}
}

func TestEnqueueAnalysisEndpoint(t *testing.T) {
	svc := &stubAnalysisService{jobID: "job-123"}
	app := newTestApp(svc, &stubSentimentService{})

	req := httptest.NewRequest("POST", "/api/v1/social-comment-analysis/jobs", strings.NewReader(`{"limit":50}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	if resp.StatusCode != 202 {
		t.Fatalf("status = %d, want 202", resp.StatusCode)
	}
	if svc.gotLimit != 50 {
		t.Errorf("limit = %d, want 50", svc.gotLimit)
	}
	body := decodeBody(t, resp.Body)
	data := body["data"].(map[string]any)
	if data["job_id"] != "job-123" {
		t.Errorf("job_id = %v", data["job_id"])
	}
}

func TestSentimentEndpoint(t *testing.T) {
	svc := &stubSentimentService{result: &in.SentimentResult{
		Results:        []*domain.SentimentRecord{{SourceID: "c1", Sentiment: "positive"}},
		TotalAnalyzed:  1,
		TotalRequested: 2,
	}}
	app := newTestApp(&stubAnalysisService{}, svc)

	req := httptest.NewRequest("POST", "/api/v1/sentiment/analyze", strings.NewReader(`{"commentIds":["c1","c2"]}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if svc.gotReq == nil || len(svc.gotReq.CommentIDs) != 2 {
		t.Errorf("request = %+v", svc.gotReq)
	}
}

func TestSentimentEndpointRejectsEmptySelection(t *testing.T) {
	svc := &stubSentimentService{}
	app := newTestApp(&stubAnalysisService{}, svc)

	req := httptest.NewRequest("POST", "/api/v1/sentiment/analyze", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	if resp.StatusCode != 400 {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	if svc.gotReq != nil {
		t.Error("service should not be called for empty selection")
	}
}
