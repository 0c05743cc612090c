package out

import "context"

// =============================================================================
// Classification Capabilities
// =============================================================================
//
// One interface per model family. Implementations are constructed once at
// bootstrap and injected into the pipeline stages; they are stateless and may
// be shared across concurrent stage invocations, but a single stage instance
// is never called concurrently with itself.

// LabelScore is one (label, score) prediction.
type LabelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// TextClassifier scores labels for each input text. Each element of the
// returned outer slice corresponds to the input at the same position; the
// inner slice holds one or more predictions depending on the model (top-1 for
// sentiment-style models, the full distribution for emotion-style models).
// batchSize is a hint for the provider's internal batching.
type TextClassifier interface {
	ClassifyBatch(ctx context.Context, texts []string, batchSize int) ([][]LabelScore, error)
}

// ZeroShotResult holds candidate labels ranked by score, aligned index-wise.
type ZeroShotResult struct {
	Labels []string  `json:"labels"`
	Scores []float64 `json:"scores"`
}

// ZeroShotClassifier scores arbitrary candidate labels for each input text.
// multiLabel selects independent per-label scoring instead of a softmax over
// the candidates.
type ZeroShotClassifier interface {
	ClassifyBatch(ctx context.Context, texts []string, candidateLabels []string, multiLabel bool, batchSize int) ([]ZeroShotResult, error)
}

// EntitySpan is one aggregated token-classification span.
type EntitySpan struct {
	Word   string  `json:"word"`
	Entity string  `json:"entity"`
	Score  float64 `json:"score"`
}

// TokenClassifier extracts entity spans from each input text.
type TokenClassifier interface {
	ExtractBatch(ctx context.Context, texts []string, batchSize int) ([][]EntitySpan, error)
}
