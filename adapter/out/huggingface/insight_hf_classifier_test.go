package huggingface

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := NewClient(ClientConfig{BaseURL: server.URL, Token: "test-token"}, nil)
	return client, server
}

func TestTextClassifierDecodesPredictions(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/"+ModelSentiment {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("authorization = %q", got)
		}
		w.Write([]byte(`[[{"label":"POSITIVE","score":0.98}],[{"label":"NEGATIVE","score":0.87}]]`))
	})

	adapter := NewTextClassifier(client, ModelSentiment)
	preds, err := adapter.ClassifyBatch(context.Background(), []string{"love it", "hate it"}, 16)
	if err != nil {
		t.Fatalf("ClassifyBatch error: %v", err)
	}
	if len(preds) != 2 {
		t.Fatalf("preds len = %d, want 2", len(preds))
	}
	if preds[0][0].Label != "POSITIVE" || preds[0][0].Score != 0.98 {
		t.Errorf("first prediction = %+v", preds[0][0])
	}
	if preds[1][0].Label != "NEGATIVE" {
		t.Errorf("second prediction = %+v", preds[1][0])
	}
}

func TestTextClassifierChunksRequests(t *testing.T) {
	var calls int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(`[[{"label":"POSITIVE","score":0.9}],[{"label":"POSITIVE","score":0.9}]]`))
	})

	adapter := NewTextClassifier(client, ModelSentiment)
	texts := []string{"a", "b", "c", "d"}
	preds, err := adapter.ClassifyBatch(context.Background(), texts, 2)
	if err != nil {
		t.Fatalf("ClassifyBatch error: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("API calls = %d, want 2", got)
	}
	if len(preds) != 4 {
		t.Errorf("preds len = %d, want 4", len(preds))
	}
}

func TestZeroShotDecodesRankedLabels(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"sequence":"refund now","labels":["complaint","request"],"scores":[0.81,0.12]}]`))
	})

	adapter := NewZeroShotClassifier(client, ModelZeroShot)
	results, err := adapter.ClassifyBatch(context.Background(), []string{"refund now"}, []string{"complaint", "request"}, false, 16)
	if err != nil {
		t.Fatalf("ClassifyBatch error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("results len = %d, want 1", len(results))
	}
	if results[0].Labels[0] != "complaint" || results[0].Scores[0] != 0.81 {
		t.Errorf("top label = %+v", results[0])
	}
}

func TestTokenClassifierDecodesSpans(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[[{"entity_group":"ORG","word":"Acme","score":0.99,"start":0,"end":4}]]`))
	})

	adapter := NewTokenClassifier(client, ModelNER)
	spans, err := adapter.ExtractBatch(context.Background(), []string{"Acme broke again"}, 16)
	if err != nil {
		t.Fatalf("ExtractBatch error: %v", err)
	}
	if len(spans) != 1 || len(spans[0]) != 1 {
		t.Fatalf("spans = %+v", spans)
	}
	if spans[0][0].Word != "Acme" || spans[0][0].Entity != "ORG" {
		t.Errorf("span = %+v", spans[0][0])
	}
}

func TestClientSurfacesAPIError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":"Model is currently loading","estimated_time":20.0}`))
	})

	adapter := NewTextClassifier(client, ModelToxicity)
	if _, err := adapter.ClassifyBatch(context.Background(), []string{"text"}, 16); err == nil {
		t.Fatal("expected error from 503 response")
	}
}
