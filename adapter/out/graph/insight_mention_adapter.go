package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"insight_server/core/domain"
)

// =============================================================================
// Neo4j Entity Mention Adapter
// =============================================================================

// MentionAdapter implements out.EntityGraphStore. It maintains a mention
// graph (Comment)-[:MENTIONS]->(Entity) and (Comment)-[:ABOUT]->(Topic) for
// cross-comment exploration. The graph is an optional sink; callers treat
// failures as non-fatal.
type MentionAdapter struct {
	driver neo4j.DriverWithContext
	dbName string
}

// NewMentionAdapter creates a new Neo4j entity mention adapter.
func NewMentionAdapter(driver neo4j.DriverWithContext, dbName string) *MentionAdapter {
	return &MentionAdapter{
		driver: driver,
		dbName: dbName,
	}
}

// EnsureIndexes creates necessary constraints for the mention graph.
func (a *MentionAdapter) EnsureIndexes(ctx context.Context) error {
	session := a.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: a.dbName})
	defer session.Close(ctx)

	queries := []string{
		`CREATE CONSTRAINT comment_id_unique IF NOT EXISTS FOR (c:Comment) REQUIRE c.id IS UNIQUE`,
		`CREATE CONSTRAINT entity_name_unique IF NOT EXISTS FOR (e:Entity) REQUIRE e.name IS UNIQUE`,
		`CREATE CONSTRAINT topic_name_unique IF NOT EXISTS FOR (t:Topic) REQUIRE t.name IS UNIQUE`,
		`CREATE INDEX comment_risk_idx IF NOT EXISTS FOR (c:Comment) ON (c.risk_index)`,
	}
	for _, query := range queries {
		_, err := session.Run(ctx, query, nil)
		if err != nil {
			// Ignore errors for existing constraints
			continue
		}
	}
	return nil
}

// RecordMentions merges the comment node and its entity/topic edges.
func (a *MentionAdapter) RecordMentions(ctx context.Context, insight *domain.CommentInsight) error {
	if insight == nil || insight.ID == "" {
		return nil
	}
	if len(insight.Entities) == 0 && len(insight.Topics) == 0 {
		return nil
	}

	session := a.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: a.dbName})
	defer session.Close(ctx)

	// FOREACH tolerates empty lists, UNWIND would drop the row.
	query := `
		MERGE (c:Comment {id: $id})
		SET c.sentiment = $sentiment,
			c.intent = $intent,
			c.risk_index = $riskIndex,
			c.platform = $platform,
			c.brand = $brand,
			c.updated_at = timestamp()
		FOREACH (entityName IN $entities |
			MERGE (e:Entity {name: entityName})
			MERGE (c)-[:MENTIONS]->(e))
		FOREACH (topicName IN $topics |
			MERGE (t:Topic {name: topicName})
			MERGE (c)-[:ABOUT]->(t))
	`
	params := map[string]interface{}{
		"id":        insight.ID,
		"sentiment": insight.Sentiment,
		"intent":    insight.Intent,
		"riskIndex": insight.RiskIndex,
		"platform":  insight.Platform,
		"brand":     insight.Brand,
		"entities":  stringList(insight.Entities),
		"topics":    stringList(insight.Topics),
	}

	if _, err := session.Run(ctx, query, params); err != nil {
		return fmt.Errorf("record mentions for %s: %w", insight.ID, err)
	}
	return nil
}

// Close closes the underlying driver.
func (a *MentionAdapter) Close(ctx context.Context) error {
	return a.driver.Close(ctx)
}

func stringList(values []string) []any {
	list := make([]any, len(values))
	for i, v := range values {
		list[i] = v
	}
	return list
}
