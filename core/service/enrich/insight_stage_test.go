package enrich

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"insight_server/core/domain"
	"insight_server/core/port/out"
)

// fakeTextClassifier returns canned predictions and counts calls.
type fakeTextClassifier struct {
	calls   int
	lastIn  []string
	perText []out.LabelScore
	err     error
}

func (f *fakeTextClassifier) ClassifyBatch(_ context.Context, texts []string, _ int) ([][]out.LabelScore, error) {
	f.calls++
	f.lastIn = texts
	if f.err != nil {
		return nil, f.err
	}
	preds := make([][]out.LabelScore, len(texts))
	for i := range texts {
		preds[i] = f.perText
	}
	return preds, nil
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		name      string
		texts     []string
		wantValid []bool
	}{
		{
			name:      "mixed valid and blank",
			texts:     []string{"hello", "", "   ", "\t\n", "world"},
			wantValid: []bool{true, false, false, false, true},
		},
		{
			name:      "empty input",
			texts:     []string{},
			wantValid: []bool{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batch := Sanitize(tt.texts)
			if batch.Len() != len(tt.texts) {
				t.Fatalf("Len() = %d, want %d", batch.Len(), len(tt.texts))
			}
			for i, want := range tt.wantValid {
				if batch.Items[i].Valid != want {
					t.Errorf("item %d valid = %v, want %v", i, batch.Items[i].Valid, want)
				}
			}
		})
	}
}

func TestSanitizeTruncatesClassificationCopy(t *testing.T) {
	long := strings.Repeat("a", MaxTextLen+100)
	batch := Sanitize([]string{long})

	if got := len([]rune(batch.Items[0].Text)); got != MaxTextLen {
		t.Errorf("truncated length = %d, want %d", got, MaxTextLen)
	}
	if !batch.Items[0].Valid {
		t.Error("long text should stay valid")
	}
}

func TestSanitizeTruncationIsRuneSafe(t *testing.T) {
	long := strings.Repeat("é", MaxTextLen+10)
	batch := Sanitize([]string{long})

	got := batch.Items[0].Text
	if !strings.HasPrefix(long, got) {
		t.Error("truncation split a multibyte rune")
	}
	if len([]rune(got)) != MaxTextLen {
		t.Errorf("rune length = %d, want %d", len([]rune(got)), MaxTextLen)
	}
}

func TestDeriveSentiment(t *testing.T) {
	tests := []struct {
		name         string
		preds        []out.LabelScore
		wantLabel    string
		wantPolarity float64
	}{
		{
			name:         "positive maps to positive polarity",
			preds:        []out.LabelScore{{Label: "POSITIVE", Score: 0.91}},
			wantLabel:    "positive",
			wantPolarity: 0.91,
		},
		{
			name:         "negative maps to negative polarity",
			preds:        []out.LabelScore{{Label: "negative", Score: 0.84}},
			wantLabel:    "negative",
			wantPolarity: -0.84,
		},
		{
			name:         "unknown label maps to neutral zero polarity",
			preds:        []out.LabelScore{{Label: "mixed", Score: 0.70}},
			wantLabel:    "neutral",
			wantPolarity: 0,
		},
		{
			name:         "no predictions falls back to neutral",
			preds:        nil,
			wantLabel:    "neutral",
			wantPolarity: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := deriveSentiment(tt.preds)
			if got.Label != tt.wantLabel {
				t.Errorf("label = %q, want %q", got.Label, tt.wantLabel)
			}
			if math.Abs(got.Polarity-tt.wantPolarity) > 1e-9 {
				t.Errorf("polarity = %v, want %v", got.Polarity, tt.wantPolarity)
			}
		})
	}
}

func TestDeriveEmotion(t *testing.T) {
	preds := []out.LabelScore{
		{Label: "joy", Score: 0.21},
		{Label: "Anger", Score: 0.55},
		{Label: "fear", Score: 0.12345},
	}
	got := deriveEmotion(preds)

	if got.Top != "anger" {
		t.Errorf("top emotion = %q, want %q", got.Top, "anger")
	}
	if len(got.Scores) != 3 {
		t.Fatalf("scores len = %d, want 3", len(got.Scores))
	}
	if got.Scores[0].Emotion != "anger" || got.Scores[1].Emotion != "joy" || got.Scores[2].Emotion != "fear" {
		t.Errorf("scores not sorted descending: %+v", got.Scores)
	}
	if got.Scores[2].Score != 0.1235 {
		t.Errorf("sub-score = %v, want rounded 0.1235", got.Scores[2].Score)
	}
}

func TestDeriveEmotionEmpty(t *testing.T) {
	got := deriveEmotion(nil)
	if got.Top != domain.EmotionNeutral {
		t.Errorf("top = %q, want neutral", got.Top)
	}
	if got.Scores == nil || len(got.Scores) != 0 {
		t.Errorf("scores = %v, want empty non-nil slice", got.Scores)
	}
}

func TestDeriveToxicity(t *testing.T) {
	tests := []struct {
		name      string
		preds     []out.LabelScore
		wantLabel string
		wantScore float64
	}{
		{
			name:      "toxic label keeps raw score",
			preds:     []out.LabelScore{{Label: "toxic", Score: 0.88}},
			wantLabel: domain.ToxicityToxic,
			wantScore: 0.88,
		},
		{
			name:      "LABEL_1 counts as toxic",
			preds:     []out.LabelScore{{Label: "LABEL_1", Score: 0.61}},
			wantLabel: domain.ToxicityToxic,
			wantScore: 0.61,
		},
		{
			name:      "safe label complements the score",
			preds:     []out.LabelScore{{Label: "non-toxic", Score: 0.95}},
			wantLabel: domain.ToxicitySafe,
			wantScore: 0.05,
		},
		{
			name:      "no predictions falls back safe with zero score",
			preds:     nil,
			wantLabel: domain.ToxicitySafe,
			wantScore: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := deriveToxicity(tt.preds)
			if got.Label != tt.wantLabel {
				t.Errorf("label = %q, want %q", got.Label, tt.wantLabel)
			}
			if math.Abs(got.Score-tt.wantScore) > 1e-9 {
				t.Errorf("score = %v, want %v", got.Score, tt.wantScore)
			}
		})
	}
}

func TestDeriveSarcasm(t *testing.T) {
	tests := []struct {
		name      string
		preds     []out.LabelScore
		wantLabel string
	}{
		{
			name:      "sarcasm substring matches",
			preds:     []out.LabelScore{{Label: "Sarcasm", Score: 0.72}},
			wantLabel: domain.SarcasmSarcastic,
		},
		{
			name:      "uppercase sarcasm class matches",
			preds:     []out.LabelScore{{Label: "SARCASM", Score: 0.66}},
			wantLabel: domain.SarcasmSarcastic,
		},
		{
			name:      "not_sarcastic stays not sarcastic",
			preds:     []out.LabelScore{{Label: "not_sarcastic", Score: 0.9}},
			wantLabel: domain.SarcasmNotSarcastic,
		},
		{
			name:      "other label is not sarcastic",
			preds:     []out.LabelScore{{Label: "literal", Score: 0.81}},
			wantLabel: domain.SarcasmNotSarcastic,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := deriveSarcasm(tt.preds); got.Label != tt.wantLabel {
				t.Errorf("label = %q, want %q", got.Label, tt.wantLabel)
			}
		})
	}
}

func TestDeriveTopicsThreshold(t *testing.T) {
	res := out.ZeroShotResult{
		Labels: []string{"pricing", "support", "other"},
		Scores: []float64{0.80, 0.25, 0.249},
	}
	got := deriveTopics(res, 0.25)
	want := []string{"pricing", "support"}
	if len(got) != len(want) {
		t.Fatalf("topics = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("topic %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestDeriveEntities(t *testing.T) {
	spans := []out.EntitySpan{
		{Word: "Apple", Entity: "ORG", Score: 0.99},
		{Word: "##Inc", Entity: "ORG", Score: 0.95},
		{Word: "Apple", Entity: "ORG", Score: 0.90},
		{Word: "  ", Entity: "MISC", Score: 0.40},
		{Word: "Paris", Entity: "LOC", Score: 0.97},
	}
	got := deriveEntities(spans)
	want := []string{"Apple", "Inc", "Paris"}
	if len(got) != len(want) {
		t.Fatalf("entities = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entity %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestStageSkipsInvalidPositions(t *testing.T) {
	classifier := &fakeTextClassifier{perText: []out.LabelScore{{Label: "positive", Score: 0.9}}}
	stage := NewSentimentStage(classifier)

	batch := Sanitize([]string{"good one", "", "another"})
	results, err := stage.RunBatch(context.Background(), batch, 16)
	if err != nil {
		t.Fatalf("RunBatch error: %v", err)
	}

	if len(results) != 3 {
		t.Fatalf("results len = %d, want 3", len(results))
	}
	if len(classifier.lastIn) != 2 {
		t.Errorf("classifier saw %d texts, want 2 valid only", len(classifier.lastIn))
	}
	if results[1].Label != domain.SentimentNeutral || results[1].Polarity != 0 {
		t.Errorf("invalid position = %+v, want neutral fallback", results[1])
	}
	if results[0].Label != "positive" || results[2].Label != "positive" {
		t.Errorf("valid positions not mapped back: %+v", results)
	}
}

func TestStageNoCallWhenAllInvalid(t *testing.T) {
	classifier := &fakeTextClassifier{perText: []out.LabelScore{{Label: "positive", Score: 0.9}}}
	stage := NewSentimentStage(classifier)

	batch := Sanitize([]string{"", "   "})
	results, err := stage.RunBatch(context.Background(), batch, 16)
	if err != nil {
		t.Fatalf("RunBatch error: %v", err)
	}

	if classifier.calls != 0 {
		t.Errorf("classifier called %d times, want 0", classifier.calls)
	}
	for i, r := range results {
		if r.Label != domain.SentimentNeutral {
			t.Errorf("position %d = %+v, want neutral fallback", i, r)
		}
	}
}

func TestStagePropagatesBatchError(t *testing.T) {
	classifier := &fakeTextClassifier{err: errors.New("model unavailable")}
	stage := NewToxicityStage(classifier)

	_, err := stage.RunBatch(context.Background(), Sanitize([]string{"some text"}), 16)
	if err == nil {
		t.Fatal("expected whole-batch error to propagate")
	}
}

func TestSentimentClassifyAbsorbsError(t *testing.T) {
	classifier := &fakeTextClassifier{err: errors.New("boom")}
	stage := NewSentimentStage(classifier)

	got := stage.Classify(context.Background(), "anything")
	if got.Label != domain.SentimentNeutral {
		t.Errorf("single-item error result = %+v, want neutral fallback", got)
	}
}
