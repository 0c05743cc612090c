package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"insight_server/core/domain"
)

// =============================================================================
// Run Report Adapter
// =============================================================================

const collectionRunReports = "enrichment_run_reports"

// RunReportAdapter implements out.RunReportRepository. Reports are an
// operational archive; losing one never fails a run.
type RunReportAdapter struct {
	collection *mongo.Collection
}

// NewRunReportAdapter creates a new run report adapter.
func NewRunReportAdapter(db *mongo.Database) *RunReportAdapter {
	return &RunReportAdapter{collection: db.Collection(collectionRunReports)}
}

// EnsureIndexes creates necessary indexes for the collection.
func (a *RunReportAdapter) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "run_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "started_at", Value: -1}},
		},
	}
	_, err := a.collection.Indexes().CreateMany(ctx, indexes)
	return err
}

// reportDocument is the stored form of a run report.
type reportDocument struct {
	RunID           string    `bson:"run_id"`
	WorkerID        string    `bson:"worker_id,omitempty"`
	TotalRecords    int       `bson:"total_records"`
	AnalyzedRecords int       `bson:"analyzed_records"`
	Chunks          int       `bson:"chunks"`
	DegradedStages  []string  `bson:"degraded_stages,omitempty"`
	StartedAt       time.Time `bson:"started_at"`
	DurationMs      int64     `bson:"duration_ms"`
	ArchivedAt      time.Time `bson:"archived_at"`
}

// Save archives one run report.
func (a *RunReportAdapter) Save(ctx context.Context, report *domain.EnrichmentRunReport) error {
	doc := reportDocument{
		RunID:           report.RunID,
		WorkerID:        report.WorkerID,
		TotalRecords:    report.TotalRecords,
		AnalyzedRecords: report.AnalyzedRecords,
		Chunks:          report.Chunks,
		DegradedStages:  report.DegradedStages,
		StartedAt:       report.StartedAt,
		DurationMs:      report.DurationMs,
		ArchivedAt:      time.Now(),
	}
	if _, err := a.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert run report %s: %w", report.RunID, err)
	}
	return nil
}

// FindRecent returns the most recent reports, newest first.
func (a *RunReportAdapter) FindRecent(ctx context.Context, limit int) ([]*domain.EnrichmentRunReport, error) {
	if limit <= 0 {
		limit = 20
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "started_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := a.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find run reports: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []reportDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode run reports: %w", err)
	}

	reports := make([]*domain.EnrichmentRunReport, len(docs))
	for i, doc := range docs {
		reports[i] = &domain.EnrichmentRunReport{
			RunID:           doc.RunID,
			WorkerID:        doc.WorkerID,
			TotalRecords:    doc.TotalRecords,
			AnalyzedRecords: doc.AnalyzedRecords,
			Chunks:          doc.Chunks,
			DegradedStages:  doc.DegradedStages,
			StartedAt:       doc.StartedAt,
			DurationMs:      doc.DurationMs,
		}
	}
	return reports, nil
}
