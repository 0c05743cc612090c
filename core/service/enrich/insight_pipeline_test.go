package enrich

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"insight_server/core/domain"
	"insight_server/core/port/out"
	"insight_server/pkg/apperr"
)

// fakeZeroShot returns the same ranked result for every text.
type fakeZeroShot struct {
	result out.ZeroShotResult
	err    error
}

func (f *fakeZeroShot) ClassifyBatch(_ context.Context, texts []string, _ []string, _ bool, _ int) ([]out.ZeroShotResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	results := make([]out.ZeroShotResult, len(texts))
	for i := range texts {
		results[i] = f.result
	}
	return results, nil
}

// fakeNER returns the same spans for every text.
type fakeNER struct {
	spans []out.EntitySpan
	err   error
}

func (f *fakeNER) ExtractBatch(_ context.Context, texts []string, _ int) ([][]out.EntitySpan, error) {
	if f.err != nil {
		return nil, f.err
	}
	results := make([][]out.EntitySpan, len(texts))
	for i := range texts {
		results[i] = f.spans
	}
	return results, nil
}

// keyedTextClassifier maps each text to its own canned predictions.
type keyedTextClassifier struct {
	preds map[string][]out.LabelScore
}

func (k *keyedTextClassifier) ClassifyBatch(_ context.Context, texts []string, _ int) ([][]out.LabelScore, error) {
	results := make([][]out.LabelScore, len(texts))
	for i, text := range texts {
		results[i] = k.preds[text]
	}
	return results, nil
}

// stageFixture wires deterministic capabilities into a full stage set.
type stageFixture struct {
	sentiment *fakeTextClassifier
	emotion   *fakeTextClassifier
	language  *fakeTextClassifier
	toxicity  *fakeTextClassifier
	sarcasm   *fakeTextClassifier
	intent    *fakeZeroShot
	topics    *fakeZeroShot
	entities  *fakeNER
}

func newStageFixture() *stageFixture {
	return &stageFixture{
		sentiment: &fakeTextClassifier{perText: []out.LabelScore{{Label: "positive", Score: 0.9}}},
		emotion: &fakeTextClassifier{perText: []out.LabelScore{
			{Label: "joy", Score: 0.8},
			{Label: "anger", Score: 0.1},
		}},
		language: &fakeTextClassifier{perText: []out.LabelScore{{Label: "en", Score: 0.99}}},
		toxicity: &fakeTextClassifier{perText: []out.LabelScore{{Label: "non-toxic", Score: 0.97}}},
		sarcasm:  &fakeTextClassifier{perText: []out.LabelScore{{Label: "literal", Score: 0.9}}},
		intent: &fakeZeroShot{result: out.ZeroShotResult{
			Labels: []string{"praise", "statement"},
			Scores: []float64{0.85, 0.15},
		}},
		topics: &fakeZeroShot{result: out.ZeroShotResult{
			Labels: []string{"praise", "pricing"},
			Scores: []float64{0.70, 0.10},
		}},
		entities: &fakeNER{spans: []out.EntitySpan{{Word: "Acme", Entity: "ORG", Score: 0.98}}},
	}
}

func (f *stageFixture) stages() *Stages {
	return &Stages{
		Sentiment: NewSentimentStage(f.sentiment),
		Emotion:   NewEmotionStage(f.emotion),
		Language:  NewLanguageStage(f.language),
		Intent:    NewIntentStage(f.intent),
		Toxicity:  NewToxicityStage(f.toxicity),
		Sarcasm:   NewSarcasmStage(f.sarcasm),
		Topics:    NewTopicEntityStage(f.topics, f.entities, 0.25),
	}
}

func testRecords(n int) []*domain.SocialComment {
	records := make([]*domain.SocialComment, n)
	for i := range records {
		records[i] = &domain.SocialComment{
			ID:      fmt.Sprintf("rec-%d", i),
			Comment: fmt.Sprintf("comment number %d", i),
		}
	}
	return records
}

// ============================================================================
// Scheduler
// ============================================================================

func TestSchedulerPopulatesAllStages(t *testing.T) {
	fixture := newStageFixture()
	scheduler := NewScheduler(ModeSequential, 1, 16, nil)

	batch := Sanitize([]string{"Great product", "", "This is terrible"})
	results := scheduler.RunStages(context.Background(), batch, fixture.stages())

	for name, length := range map[string]int{
		"sentiment": len(results.Sentiment),
		"emotion":   len(results.Emotion),
		"language":  len(results.Language),
		"intent":    len(results.Intent),
		"toxicity":  len(results.Toxicity),
		"sarcasm":   len(results.Sarcasm),
		"topics":    len(results.Topics),
	} {
		if length != batch.Len() {
			t.Errorf("%s results len = %d, want %d", name, length, batch.Len())
		}
	}
	if len(results.Degraded) != 0 {
		t.Errorf("degraded = %v, want none", results.Degraded)
	}

	// Blank middle position stays on fallbacks across every stage.
	if results.Sentiment[1].Label != domain.SentimentNeutral {
		t.Errorf("blank position sentiment = %+v", results.Sentiment[1])
	}
	if results.Language[1] != domain.LanguageUnknown {
		t.Errorf("blank position language = %q", results.Language[1])
	}
}

func TestSchedulerDegradesFailedStage(t *testing.T) {
	fixture := newStageFixture()
	fixture.sentiment.err = errors.New("inference endpoint down")
	scheduler := NewScheduler(ModeSequential, 1, 16, nil)

	batch := Sanitize([]string{"one", "two", "three"})
	results := scheduler.RunStages(context.Background(), batch, fixture.stages())

	if len(results.Degraded) != 1 || results.Degraded[0] != "sentiment" {
		t.Fatalf("degraded = %v, want [sentiment]", results.Degraded)
	}
	if len(results.Sentiment) != 3 {
		t.Fatalf("sentiment len = %d, want 3", len(results.Sentiment))
	}
	for i, r := range results.Sentiment {
		if r.Label != domain.SentimentNeutral {
			t.Errorf("position %d = %+v, want neutral fallback", i, r)
		}
	}
	// Other stages are unaffected.
	if results.Emotion[0].Top != "joy" {
		t.Errorf("emotion top = %q, want joy", results.Emotion[0].Top)
	}
}

func TestSchedulerConcurrentMatchesSequential(t *testing.T) {
	texts := []string{"first text", "second text", "", "fourth text"}
	records := []*domain.SocialComment{
		{ID: "a", Comment: texts[0]},
		{ID: "b", Comment: texts[1]},
		{ID: "c", Comment: texts[2]},
		{ID: "d", Comment: texts[3]},
	}
	assembler := NewAssembler(nil)
	batch := Sanitize(texts)

	seq := NewScheduler(ModeSequential, 1, 16, nil).
		RunStages(context.Background(), batch, newStageFixture().stages())
	conc := NewScheduler(ModeConcurrent, 4, 16, nil).
		RunStages(context.Background(), batch, newStageFixture().stages())

	seqInsights := assembler.Assemble(context.Background(), records, seq)
	concInsights := assembler.Assemble(context.Background(), records, conc)

	if !reflect.DeepEqual(seqInsights, concInsights) {
		t.Errorf("concurrent run differs from sequential:\nseq:  %+v\nconc: %+v", seqInsights, concInsights)
	}
}

// ============================================================================
// Assembler
// ============================================================================

func TestAssemblerSkipsBlankIdentity(t *testing.T) {
	records := []*domain.SocialComment{
		{ID: "one", Comment: "fine"},
		{ID: "  ", Comment: "no identity"},
		{ID: "three", Comment: "also fine"},
	}
	results := NewScheduler(ModeSequential, 1, 16, nil).
		RunStages(context.Background(), Sanitize([]string{"fine", "no identity", "also fine"}), newStageFixture().stages())

	insights := NewAssembler(nil).Assemble(context.Background(), records, results)
	if len(insights) != 2 {
		t.Fatalf("insights len = %d, want 2", len(insights))
	}
	if insights[0].ID != "one" || insights[1].ID != "three" {
		t.Errorf("identities = %q, %q", insights[0].ID, insights[1].ID)
	}
}

func TestAssemblerDefensiveOnShortResults(t *testing.T) {
	records := testRecords(3)
	// Ragged results: only one position filled in some stages, none in others.
	results := &StageResults{
		Sentiment: []SentimentResult{{Label: "negative", Polarity: -0.8, Score: 0.8}},
		Language:  []string{"en"},
	}

	insights := NewAssembler(nil).Assemble(context.Background(), records, results)
	if len(insights) != 3 {
		t.Fatalf("insights len = %d, want 3", len(insights))
	}
	if insights[0].Sentiment != "negative" {
		t.Errorf("position 0 sentiment = %q, want negative", insights[0].Sentiment)
	}
	for i := 1; i < 3; i++ {
		if insights[i].Sentiment != domain.SentimentNeutral {
			t.Errorf("position %d sentiment = %q, want neutral fallback", i, insights[i].Sentiment)
		}
		if insights[i].Language != domain.LanguageUnknown {
			t.Errorf("position %d language = %q, want unknown", i, insights[i].Language)
		}
		if insights[i].Topics == nil || insights[i].Entities == nil {
			t.Errorf("position %d topics/entities should be empty non-nil", i)
		}
	}
}

func TestAssemblerRoundsScores(t *testing.T) {
	records := testRecords(1)
	results := &StageResults{
		Sentiment: []SentimentResult{{Label: "negative", Polarity: -0.87654, Score: 0.87654}},
		Intent:    []IntentResult{{Label: "complaint", Confidence: 0.66666}},
		Toxicity:  []ToxicityResult{{Label: domain.ToxicityToxic, Score: 0.55555}},
		Sarcasm:   []SarcasmResult{{Label: domain.SarcasmNotSarcastic, Score: 0.12312}},
	}

	insight := NewAssembler(nil).Assemble(context.Background(), records, results)[0]
	if insight.SentimentScore != 0.877 {
		t.Errorf("sentiment score = %v, want 0.877", insight.SentimentScore)
	}
	if insight.Polarity != -0.877 {
		t.Errorf("polarity = %v, want -0.877", insight.Polarity)
	}
	if insight.IntentConfidence != 0.667 {
		t.Errorf("intent confidence = %v, want 0.667", insight.IntentConfidence)
	}
	if insight.ToxicityScore != 0.556 {
		t.Errorf("toxicity score = %v, want 0.556", insight.ToxicityScore)
	}
	if insight.RiskIndex < 0 || insight.RiskIndex > 1 {
		t.Errorf("risk index = %v, out of [0,1]", insight.RiskIndex)
	}
}

// ============================================================================
// Runner
// ============================================================================

func newTestRunner(fixture *stageFixture, chunkSize int) *Runner {
	scheduler := NewScheduler(ModeSequential, 1, 16, nil)
	return NewRunner(fixture.stages(), scheduler, NewAssembler(nil), chunkSize, "test-worker", nil)
}

func TestRunnerChunksAndPreservesOrder(t *testing.T) {
	records := testRecords(5)
	runner := newTestRunner(newStageFixture(), 2)

	var checkpoints int
	result, err := runner.Run(context.Background(), records, func(_ context.Context, insights []*domain.CommentInsight) error {
		checkpoints++
		return nil
	})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if result.Report.TotalRecords != 5 || result.Report.AnalyzedRecords != 5 {
		t.Errorf("report counts = %d/%d, want 5/5", result.Report.AnalyzedRecords, result.Report.TotalRecords)
	}
	if result.Report.Chunks != 3 || checkpoints != 3 {
		t.Errorf("chunks = %d, checkpoints = %d, want 3 each", result.Report.Chunks, checkpoints)
	}
	for i, insight := range result.Insights {
		if insight.ID != fmt.Sprintf("rec-%d", i) {
			t.Errorf("position %d id = %q, global order broken", i, insight.ID)
		}
	}
	if result.Report.Degraded() {
		t.Errorf("report unexpectedly degraded: %+v", result.Report)
	}
}

func TestRunnerChunkHookErrorAborts(t *testing.T) {
	records := testRecords(6)
	runner := newTestRunner(newStageFixture(), 2)

	calls := 0
	result, err := runner.Run(context.Background(), records, func(_ context.Context, _ []*domain.CommentInsight) error {
		calls++
		if calls == 2 {
			return errors.New("database gone")
		}
		return nil
	})
	if err == nil {
		t.Fatal("expected checkpoint failure to abort the run")
	}
	if !apperr.Is(err, apperr.CodePersistenceFailed) {
		t.Errorf("error code = %v, want persistence failure", err)
	}
	if calls != 2 {
		t.Errorf("checkpoint calls = %d, want 2", calls)
	}
	// Only the successfully checkpointed first chunk is reported.
	if len(result.Insights) != 2 {
		t.Errorf("delivered insights = %d, want 2", len(result.Insights))
	}
}

func TestRunnerContinuesWhenEveryStageFails(t *testing.T) {
	fixture := newStageFixture()
	cause := errors.New("inference cluster offline")
	fixture.sentiment.err = cause
	fixture.emotion.err = cause
	fixture.language.err = cause
	fixture.toxicity.err = cause
	fixture.sarcasm.err = cause
	fixture.intent.err = cause
	fixture.topics.err = cause
	fixture.entities.err = cause

	records := testRecords(5)
	result, err := runnerRun(t, newTestRunner(fixture, 64), records)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if result.Report.AnalyzedRecords != 5 {
		t.Fatalf("analyzed = %d, want 5 fallback insights", result.Report.AnalyzedRecords)
	}
	if !result.Report.Degraded() {
		t.Error("report should be degraded")
	}
	if len(result.Report.DegradedStages) != 7 {
		t.Errorf("degraded stages = %v, want all 7", result.Report.DegradedStages)
	}
	for i, insight := range result.Insights {
		if insight.Sentiment != domain.SentimentNeutral ||
			insight.Toxicity != domain.ToxicitySafe ||
			insight.Intent != domain.IntentUnknown ||
			insight.Language != domain.LanguageUnknown {
			t.Errorf("position %d = %+v, want full fallback insight", i, insight)
		}
	}
}

func runnerRun(t *testing.T, runner *Runner, records []*domain.SocialComment) (*RunResult, error) {
	t.Helper()
	return runner.Run(context.Background(), records, nil)
}

func TestRunnerSentimentScenario(t *testing.T) {
	records := []*domain.SocialComment{
		{ID: "r0", Comment: "I love this!"},
		{ID: "r1", Comment: ""},
		{ID: "r2", Comment: "This is broken and awful"},
	}
	stages := newStageFixture().stages()
	stages.Sentiment = NewSentimentStage(&keyedTextClassifier{preds: map[string][]out.LabelScore{
		"I love this!":             {{Label: "positive", Score: 0.95}},
		"This is broken and awful": {{Label: "negative", Score: 0.85}},
	}})

	scheduler := NewScheduler(ModeSequential, 1, 16, nil)
	runner := NewRunner(stages, scheduler, NewAssembler(nil), 64, "test-worker", nil)

	result, err := runner.Run(context.Background(), records, nil)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if len(result.Insights) != 3 {
		t.Fatalf("insights len = %d, want 3", len(result.Insights))
	}

	want := []struct {
		sentiment string
		polarity  float64
	}{
		{"positive", 0.95},
		{domain.SentimentNeutral, 0},
		{"negative", -0.85},
	}
	for i, w := range want {
		insight := result.Insights[i]
		if insight.Sentiment != w.sentiment || insight.Polarity != w.polarity {
			t.Errorf("record %d = %q/%v, want %q/%v", i, insight.Sentiment, insight.Polarity, w.sentiment, w.polarity)
		}
	}
}

func TestRunnerIdempotent(t *testing.T) {
	records := testRecords(5)

	first, err := newTestRunner(newStageFixture(), 2).Run(context.Background(), records, nil)
	if err != nil {
		t.Fatalf("first run error: %v", err)
	}
	second, err := newTestRunner(newStageFixture(), 2).Run(context.Background(), records, nil)
	if err != nil {
		t.Fatalf("second run error: %v", err)
	}

	if !reflect.DeepEqual(first.Insights, second.Insights) {
		t.Errorf("repeated run differs:\nfirst:  %+v\nsecond: %+v", first.Insights, second.Insights)
	}
}

func TestRunnerEmptyInput(t *testing.T) {
	runner := newTestRunner(newStageFixture(), 64)
	result, err := runner.Run(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if result.Report.TotalRecords != 0 || result.Report.Chunks != 0 || len(result.Insights) != 0 {
		t.Errorf("empty run report = %+v", result.Report)
	}
}
