package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/herdbook/internal/server/handlers"
	"github.com/mamadbah2/herdbook/internal/service/session"
)

// New wires the Gin engine with required routes and middlewares.
func New(handler *handlers.Handler, gate Gatekeeper, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", handler.Health)
	r.GET("/session", handler.Session)

	guest := r.Group("/", gateMiddleware(gate, session.AccessGuest))
	guest.POST("/login", handler.Login)
	guest.POST("/register", handler.Register)

	protected := r.Group("/", gateMiddleware(gate, session.AccessProtected))
	protected.POST("/logout", handler.Logout)

	protected.GET("/dashboard", handler.Dashboard)
	protected.POST("/dashboard/refresh", handler.RefreshDashboard)
	protected.GET("/dashboard/tip", handler.AgentTip)

	protected.GET("/roster", handler.Roster)
	protected.POST("/roster", handler.CreateSheep)
	protected.POST("/roster/refresh", handler.RefreshRoster)
	protected.POST("/roster/sort/:key", handler.SortRoster)
	protected.GET("/roster/options", handler.RosterOptions)
	protected.GET("/roster/:earNum", handler.Sheep)
	protected.PUT("/roster/:earNum", handler.UpdateSheep)
	protected.DELETE("/roster/:earNum", handler.DeleteSheep)
	protected.GET("/roster/:earNum/events", handler.SheepEvents)
	protected.POST("/roster/:earNum/events", handler.AddSheepEvent)
	protected.GET("/roster/:earNum/history", handler.SheepHistory)

	protected.PUT("/events/:id", handler.UpdateEvent)
	protected.DELETE("/events/:id", handler.DeleteEvent)
	protected.DELETE("/history/:id", handler.DeleteHistory)

	protected.GET("/events/options", handler.EventOptions)
	protected.POST("/events/types", handler.AddEventType)
	protected.DELETE("/events/types/:id", handler.DeleteEventType)
	protected.POST("/events/descriptions", handler.AddEventDescription)
	protected.DELETE("/events/descriptions/:id", handler.DeleteEventDescription)

	protected.POST("/settings/api-key", handler.SaveAPIKey)

	protected.GET("/imports/schema", handler.ImportSchema)
	protected.POST("/imports/analyze", handler.AnalyzeWorkbook)
	protected.POST("/imports/suggest", handler.SuggestMapping)
	protected.POST("/imports", handler.SubmitImport)
	protected.POST("/imports/spreadsheet", handler.SubmitSpreadsheetImport)

	protected.POST("/advisory/chat", handler.Chat)
	protected.POST("/advisory/recommendation", handler.Recommend)

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
