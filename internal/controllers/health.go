// Файл: internal/controllers/health.go
package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"ai-assistant/internal/plugins"
)

const healthProbeTimeout = 3 * time.Second

type HealthController struct {
	dbConn      *pgxpool.Pool
	redisClient *redis.Client
	registry    plugins.RegistryInterface
	logger      *zap.Logger
}

func NewHealthController(dbConn *pgxpool.Pool, redisClient *redis.Client, registry plugins.RegistryInterface, logger *zap.Logger) *HealthController {
	return &HealthController{dbConn: dbConn, redisClient: redisClient, registry: registry, logger: logger}
}

type componentHealth struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Check отвечает на GET /health. Отдает 503, если недоступна база
// или redis; состояние плагинов информационное.
func (c *HealthController) Check(ctx echo.Context) error {
	reqCtx, cancel := context.WithTimeout(ctx.Request().Context(), healthProbeTimeout)
	defer cancel()

	components := map[string]componentHealth{}
	healthy := true

	if err := c.dbConn.Ping(reqCtx); err != nil {
		components["postgres"] = componentHealth{Status: "down", Error: err.Error()}
		healthy = false
	} else {
		components["postgres"] = componentHealth{Status: "ok"}
	}

	if err := c.redisClient.Ping(reqCtx).Err(); err != nil {
		components["redis"] = componentHealth{Status: "down", Error: err.Error()}
		healthy = false
	} else {
		components["redis"] = componentHealth{Status: "ok"}
	}

	pluginStates := map[string]bool{}
	for _, name := range c.registry.All() {
		pluginStates[name] = c.registry.IsEnabled(name)
	}

	status := "ok"
	code := http.StatusOK
	if !healthy {
		status = "degraded"
		code = http.StatusServiceUnavailable
		c.logger.Warn("Health-check обнаружил недоступные компоненты")
	}

	return ctx.JSON(code, map[string]interface{}{
		"status":     status,
		"components": components,
		"plugins":    pluginStates,
	})
}
