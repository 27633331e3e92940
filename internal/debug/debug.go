package debug

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"stories-client/internal/metrics"
	"stories-client/internal/player"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthChecker is the backend-reachability probe, normally api.Client.Health.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// SessionSource exposes the running player session, nil-able when the client
// is idle.
type SessionSource func() *player.Engine

// NewRouter builds the local debug surface for the client process: service
// info at /, liveness plus collaborator reachability at /healthz, prometheus
// at /metrics, and the current playback position at /session.
func NewRouter(health HealthChecker, session SessionSource) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestMetrics())

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "Stories Client",
			"status":  "running",
			"endpoints": []string{
				"GET /healthz",
				"GET /metrics",
				"GET /session",
			},
		})
	})

	router.GET("/healthz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		checks := map[string]string{
			"backend": "ok",
		}
		if err := health.Health(ctx); err != nil {
			checks["backend"] = err.Error()
		}

		healthy := true
		for _, status := range checks {
			if status != "ok" {
				healthy = false
				break
			}
		}

		statusCode := http.StatusOK
		if !healthy {
			statusCode = http.StatusServiceUnavailable
		}
		c.JSON(statusCode, gin.H{"status": checks, "healthy": healthy})
	})

	router.GET("/session", func(c *gin.Context) {
		engine := session()
		if engine == nil {
			c.JSON(http.StatusOK, gin.H{"active": false})
			return
		}
		snap := engine.Snapshot()
		c.JSON(http.StatusOK, gin.H{
			"active":      !snap.Done,
			"user_index":  snap.UserIndex,
			"story_index": snap.StoryIndex,
			"progress":    snap.Progress,
			"running":     snap.Running,
			"story_id":    snap.StoryID,
			"author":      snap.Author,
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}

func requestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}

		metrics.HTTPRequestsTotal.WithLabelValues(
			route,
			c.Request.Method,
			strconv.Itoa(c.Writer.Status()),
		).Inc()
	}
}
