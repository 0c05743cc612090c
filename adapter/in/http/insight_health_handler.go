package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"insight_server/infra/database"
)

const readyCheckTimeout = 5 * time.Second

// HealthHandler reports liveness and per-dependency readiness. Postgres
// gates readiness; the redis, archive, and graph collaborators are reported
// but never make the service unready, matching their degradable role in a
// run.
type HealthHandler struct {
	db    *pgxpool.Pool
	redis *redis.Client
	mongo *mongo.Client
	graph neo4j.DriverWithContext
}

func NewHealthHandler(db *pgxpool.Pool, redis *redis.Client, mongo *mongo.Client, graph neo4j.DriverWithContext) *HealthHandler {
	return &HealthHandler{db: db, redis: redis, mongo: mongo, graph: graph}
}

func (h *HealthHandler) Register(app *fiber.App) {
	app.Get("/health", h.Health)
	app.Get("/ready", h.Ready)
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), readyCheckTimeout)
	defer cancel()

	checks := fiber.Map{}
	ready := true

	if h.db != nil {
		if err := h.db.Ping(ctx); err != nil {
			checks["postgres"] = "unhealthy: " + err.Error()
			ready = false
		} else {
			checks["postgres"] = "healthy"
			checks["postgres_pool"] = database.GetPoolStats(h.db)
		}
	} else {
		checks["postgres"] = "not configured"
		ready = false
	}

	if h.redis != nil {
		if err := h.redis.Ping(ctx).Err(); err != nil {
			checks["redis"] = "unhealthy: " + err.Error()
		} else {
			checks["redis"] = "healthy"
		}
	} else {
		checks["redis"] = "not configured"
	}

	if h.mongo != nil {
		if err := h.mongo.Ping(ctx, nil); err != nil {
			checks["mongodb"] = "unhealthy: " + err.Error()
		} else {
			checks["mongodb"] = "healthy"
		}
	} else {
		checks["mongodb"] = "not configured"
	}

	if h.graph != nil {
		if err := h.graph.VerifyConnectivity(ctx); err != nil {
			checks["neo4j"] = "unhealthy: " + err.Error()
		} else {
			checks["neo4j"] = "healthy"
		}
	} else {
		checks["neo4j"] = "not configured"
	}

	status := "ready"
	code := fiber.StatusOK
	if !ready {
		status = "not ready"
		code = fiber.StatusServiceUnavailable
	}

	return c.Status(code).JSON(fiber.Map{
		"status":    status,
		"checks":    checks,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
