package api

import (
	"net/http"
	"time"

	"sales_browser/internal/sales"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestIDHeader carries the correlation id of a request.
const RequestIDHeader = "X-Request-ID"

// InitRoutes registers the sales endpoints on the given Gin engine.
// It wires the handler to the service, then binds each HTTP method and path
// to the appropriate handler function.
func InitRoutes(e *gin.Engine, salesService *sales.Service, logger *zap.Logger) {
	salesHandler := NewSalesHandler(salesService, logger)

	e.Use(requestLogger(logger))

	e.GET("/sales", salesHandler.handleListSales)
	e.POST("/sales", salesHandler.handleCreateSale)
	e.PUT("/sales/:id", salesHandler.handleUpdateSale)
	e.DELETE("/sales/:id", salesHandler.handleDeleteSale)
	e.GET("/sales/:id/notification", salesHandler.handleNotify)

	e.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
}

// NewServer builds an engine backed by in-memory storage.
func NewServer(logger *zap.Logger) (*gin.Engine, *sales.Service) {
	salesStorage := sales.NewLocalStorage()
	salesService := sales.NewService(salesStorage, sales.NewLogNotifier(logger), logger)

	e := gin.New()
	e.Use(gin.Recovery())
	InitRoutes(e, salesService, logger)
	return e, salesService
}

// requestLogger echoes or assigns a request id and logs every request.
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(RequestIDHeader, id)

		c.Next()

		logger.Info("request",
			zap.String("request_id", id),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
