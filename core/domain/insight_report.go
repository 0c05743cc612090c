package domain

import "time"

// EnrichmentRunReport summarizes one pipeline run. AnalyzedRecords can be
// lower than TotalRecords when individual records were skipped during
// assembly; DegradedStages lists stages whose whole-batch call failed and was
// replaced by fallbacks in at least one chunk.
type EnrichmentRunReport struct {
	RunID           string    `json:"run_id" bson:"run_id"`
	WorkerID        string    `json:"worker_id,omitempty" bson:"worker_id,omitempty"`
	TotalRecords    int       `json:"total_records" bson:"total_records"`
	AnalyzedRecords int       `json:"analyzed_records" bson:"analyzed_records"`
	Chunks          int       `json:"chunks" bson:"chunks"`
	DegradedStages  []string  `json:"degraded_stages,omitempty" bson:"degraded_stages,omitempty"`
	StartedAt       time.Time `json:"started_at" bson:"started_at"`
	DurationMs      int64     `json:"duration_ms" bson:"duration_ms"`
}

// Degraded reports whether any stage fell back for the whole batch.
func (r *EnrichmentRunReport) Degraded() bool {
	return len(r.DegradedStages) > 0 || r.AnalyzedRecords < r.TotalRecords
}
