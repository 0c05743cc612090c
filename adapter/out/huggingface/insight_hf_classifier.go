package huggingface

import (
	"context"

	"insight_server/core/port/out"
)

// defaultBatchSize caps one API call when the caller passes no hint.
const defaultBatchSize = 16

// =============================================================================
// Text Classification
// =============================================================================

// TextClassifierAdapter implements out.TextClassifier over one hosted model.
type TextClassifierAdapter struct {
	client *Client
	model  string
}

func NewTextClassifier(client *Client, model string) *TextClassifierAdapter {
	return &TextClassifierAdapter{client: client, model: model}
}

func (a *TextClassifierAdapter) ClassifyBatch(ctx context.Context, texts []string, batchSize int) ([][]out.LabelScore, error) {
	results := make([][]out.LabelScore, 0, len(texts))
	for _, chunk := range chunks(texts, batchSize) {
		var preds [][]out.LabelScore
		req := classificationRequest{
			Inputs:  chunk,
			Options: requestOptions{WaitForModel: a.client.waitForModel, UseCache: true},
		}
		if err := a.client.Post(ctx, a.model, req, &preds); err != nil {
			return nil, err
		}
		results = append(results, preds...)
	}
	return results, nil
}

// =============================================================================
// Zero-Shot Classification
// =============================================================================

// ZeroShotAdapter implements out.ZeroShotClassifier over an NLI model.
type ZeroShotAdapter struct {
	client *Client
	model  string
}

func NewZeroShotClassifier(client *Client, model string) *ZeroShotAdapter {
	return &ZeroShotAdapter{client: client, model: model}
}

func (a *ZeroShotAdapter) ClassifyBatch(ctx context.Context, texts []string, candidateLabels []string, multiLabel bool, batchSize int) ([]out.ZeroShotResult, error) {
	results := make([]out.ZeroShotResult, 0, len(texts))
	for _, chunk := range chunks(texts, batchSize) {
		var entries []zeroShotResponse
		req := zeroShotRequest{
			Inputs: chunk,
			Parameters: zeroShotParameters{
				CandidateLabels: candidateLabels,
				MultiLabel:      multiLabel,
			},
			Options: requestOptions{WaitForModel: a.client.waitForModel, UseCache: true},
		}
		if err := a.client.Post(ctx, a.model, req, &entries); err != nil {
			return nil, err
		}
		for _, entry := range entries {
			results = append(results, out.ZeroShotResult{Labels: entry.Labels, Scores: entry.Scores})
		}
	}
	return results, nil
}

// =============================================================================
// Token Classification
// =============================================================================

// TokenClassifierAdapter implements out.TokenClassifier over an NER model.
type TokenClassifierAdapter struct {
	client *Client
	model  string
}

func NewTokenClassifier(client *Client, model string) *TokenClassifierAdapter {
	return &TokenClassifierAdapter{client: client, model: model}
}

func (a *TokenClassifierAdapter) ExtractBatch(ctx context.Context, texts []string, batchSize int) ([][]out.EntitySpan, error) {
	results := make([][]out.EntitySpan, 0, len(texts))
	for _, chunk := range chunks(texts, batchSize) {
		var entries [][]nerEntity
		req := classificationRequest{
			Inputs:  chunk,
			Options: requestOptions{WaitForModel: a.client.waitForModel, UseCache: true},
		}
		if err := a.client.Post(ctx, a.model, req, &entries); err != nil {
			return nil, err
		}
		for _, spans := range entries {
			converted := make([]out.EntitySpan, len(spans))
			for i, span := range spans {
				converted[i] = out.EntitySpan{
					Word:   span.Word,
					Entity: span.EntityGroup,
					Score:  span.Score,
				}
			}
			results = append(results, converted)
		}
	}
	return results, nil
}

// chunks splits texts into slices of at most size elements, preserving order.
func chunks(texts []string, size int) [][]string {
	if size <= 0 {
		size = defaultBatchSize
	}
	out := make([][]string, 0, (len(texts)+size-1)/size)
	for start := 0; start < len(texts); start += size {
		end := start + size
		if end > len(texts) {
			end = len(texts)
		}
		out = append(out, texts[start:end])
	}
	return out
}
