package http

import (
	"task_tracker/internal/http/handlers"
	"task_tracker/internal/http/middleware"
	"task_tracker/internal/service"
	"task_tracker/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps carries everything the router needs.
type Deps struct {
	Handler       *handlers.Handler
	Health        *handlers.HealthHandler
	JWT           *service.JWT
	Hub           *ws.Hub
	AllowedOrigin string
}

// NewRouter builds the gin engine with middleware and every route.
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(),
		middleware.Metrics(),
		middleware.CORS(d.AllowedOrigin),
	)
	RegisterRoutes(r, d)
	return r
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	h := d.Handler
	auth := middleware.JWT(d.JWT)

	// Health checks
	r.GET("/health", d.Health.Health)
	r.GET("/healthz", d.Health.Liveness)
	r.GET("/readyz", d.Health.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	v1.Use(auth)
	{
		v1.POST("/tasks/enrich", h.CreateTaskWithAI)
		v1.GET("/tasks", h.ListTasks)
		v1.GET("/tasks/:id", h.GetTask)
		v1.PATCH("/tasks/:id", h.UpdateTask)
		v1.PATCH("/tasks/:id/complete", h.CompleteTask)
		v1.DELETE("/tasks/:id", h.DeleteTask)
		v1.GET("/tasks/:id/enrichment", h.TaskEnrichment)
		v1.PATCH("/subtasks/:id", h.UpdateSubtask)
	}

	// Path used by existing clients of the hosted function.
	r.POST("/functions/v1/create-task-with-ai", auth, h.CreateTaskWithAI)

	if d.Hub != nil {
		r.GET("/ws", handlers.WS(d.Hub, d.JWT, d.AllowedOrigin))
	}
}
