package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/splitpay/internal/server/handlers"
)

const requestIDHeader = "X-Request-ID"

// New wires the Gin engine with required routes and middlewares.
func New(handler *handlers.SalesHandler, logger *zap.Logger) (*gin.Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	gin.SetMode(gin.ReleaseMode)
	if err := handlers.RegisterValidators(); err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestIDMiddleware())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.GET("/sales", handler.List)
		api.POST("/sales", handler.Create)
		api.DELETE("/sales", handler.Clear)
		// :date is a single path segment, so it takes 2006-01-02 or the
		// day-first 2-1-2006 form. Slash-separated dates only work in bodies.
		api.GET("/sales/:date", handler.Get)
		api.PUT("/sales/:date", handler.Update)
		api.DELETE("/sales/:date", handler.Delete)
		api.POST("/sales/:date/toggle-received", handler.ToggleReceived)

		api.GET("/months", handler.Months)
		api.GET("/export.xlsx", handler.Export)
		api.POST("/import", handler.Import)
		api.POST("/sheets/push", handler.PushSheet)
		api.POST("/sheets/pull", handler.PullSheet)
	}

	logger.Info("router initialized")
	return r, nil
}

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDHeader, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("request_id", c.GetString(requestIDHeader)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
