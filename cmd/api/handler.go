package api

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"time"

	authUsecase "taskboard/internal/auth/usecase"
	taskDelivery "taskboard/internal/task/delivery"
	taskUsecasePkg "taskboard/internal/task/usecase"
	"taskboard/pkg/config"
	"taskboard/pkg/logging"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	authUsecase authUsecase.AuthUsecase
	taskUsecase taskUsecasePkg.TaskUsecase
	config      *config.Config
	taskHandler *taskDelivery.TaskHandler
	server      *http.Server
}

func NewHandler(authUc authUsecase.AuthUsecase, taskUc taskUsecasePkg.TaskUsecase, cfg *config.Config) *Handler {
	return &Handler{
		authUsecase: authUc,
		taskUsecase: taskUc,
		config:      cfg,
		taskHandler: taskDelivery.NewTaskHandler(taskUc),
	}
}

// Engine builds the gin engine with middleware and every route.
func (h *Handler) Engine() *gin.Engine {
	r := gin.New()
	r.Use(logging.GinMiddleware(), gin.Recovery(), corsMiddleware(h.config.CORSOrigins))
	SetupRoutes(r, h.authUsecase, h.taskHandler)
	return r
}

// Start serves until Shutdown is called.
func (h *Handler) Start(addr string) error {
	h.server = &http.Server{
		Addr:              addr,
		Handler:           h.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	logging.For("api").Infof("server starting on %s", addr)
	if err := h.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (h *Handler) Shutdown(ctx context.Context) error {
	if h.server == nil {
		return nil
	}
	return h.server.Shutdown(ctx)
}

// corsMiddleware reflects the request origin. With a non-empty allow list
// only listed origins are reflected.
func corsMiddleware(allowed []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		switch {
		case origin == "":
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		case len(allowed) == 0 || slices.Contains(allowed, origin):
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Vary", "Origin")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
