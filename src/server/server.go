package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"

	"twstock-observer/src/logger"
	"twstock-observer/src/models"
)

// -----------------------------------------------------------------------------
// DashboardServer
// -----------------------------------------------------------------------------

type DashboardServer struct {
	Config *models.MConfig
	Logger *logger.Logger
	Views  *ViewBuilder
	engine *gin.Engine

	// WebSocket clients
	clients    map[*Client]struct{}
	broadcast  chan *models.MDashboardView // Buffered queue
	register   chan *Client
	unregister chan *Client

	// Last rendered view, replayed to new connections
	latestView *models.MDashboardView
	stateMutex sync.RWMutex
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewDashboardServer(cfg *models.MConfig, log *logger.Logger, views *ViewBuilder) *DashboardServer {
	// Set Gin mode
	if cfg.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &DashboardServer{
		Config:     cfg,
		Logger:     log,
		Views:      views,
		engine:     gin.Default(),
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan *models.MDashboardView, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}

	// Add CORS Middleware
	s.engine.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if strings.HasPrefix(origin, "http://127.0.0.1:") || strings.HasPrefix(origin, "http://localhost:") {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// setup web routes
	s.setupRoutes()
	return s
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *DashboardServer) setupRoutes() {
	// REST API endpoints
	s.engine.GET("/api/health", s.getHealth)
	s.engine.GET("/api/config", s.getConfig)
	s.engine.GET("/api/dashboard", s.getDashboard)
	s.engine.POST("/api/analysis", s.postAnalysis)

	// WebSocket endpoint
	s.engine.GET("/ws", s.handleWebSocket)
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

func (s *DashboardServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port)
	s.Logger.Info("Starting server on %s", addr)

	go s.handleWebsockets()

	return s.engine.Run(addr)
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) Stop() error {
	// Clean shutdown
	close(s.broadcast)
	close(s.register)
	close(s.unregister)
	return nil
}

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

func (s *DashboardServer) getHealth(c *gin.Context) {
	s.stateMutex.RLock()
	connections := len(s.clients)
	var latest int64
	if s.latestView != nil {
		latest = s.latestView.Timestamp
	}
	s.stateMutex.RUnlock()

	c.JSON(200, gin.H{
		"status":        "ok",
		"connections":   connections,
		"latest_update": latest,
	})
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getConfig(c *gin.Context) {
	c.JSON(200, gin.H{
		"ma_windows":            s.Config.MAWindows,
		"default_lookback_days": s.Config.PriceData.DefaultLookbackDays,
	})
}

// -----------------------------------------------------------------------------

// getDashboard renders the price and chip panels for one stock without the
// AI narrative (GET is the cheap refresh path).
func (s *DashboardServer) getDashboard(c *gin.Context) {
	cmd := models.MAnalyzeCommand{
		Command:   "analyze",
		StockID:   c.Query("stock_id"),
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
	}
	if strings.TrimSpace(cmd.StockID) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "stock_id is required"})
		return
	}

	view := s.Views.Build(c.Request.Context(), cmd)
	s.SetLatestView(view)
	c.JSON(200, view)
}

// -----------------------------------------------------------------------------

// postAnalysis runs the full pipeline including the narrative feature and
// pushes the result to connected websocket clients.
func (s *DashboardServer) postAnalysis(c *gin.Context) {
	var cmd models.MAnalyzeCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(cmd.StockID) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "stock_id is required"})
		return
	}
	cmd.Narrative = true

	view := s.Views.Build(c.Request.Context(), cmd)
	s.Broadcast(view)
	c.JSON(200, view)
}

// -----------------------------------------------------------------------------
// Helper Methods
// -----------------------------------------------------------------------------

// SetLatestView - Thread-safe state update
func (s *DashboardServer) SetLatestView(view *models.MDashboardView) {
	s.stateMutex.Lock()
	s.latestView = view
	s.stateMutex.Unlock()
}

// -----------------------------------------------------------------------------

// Broadcast queues a view for delivery to every connected client.
func (s *DashboardServer) Broadcast(view *models.MDashboardView) {
	select {
	case s.broadcast <- view:
	default:
		s.Logger.Warning("Broadcast queue full, dropping view for %s", view.StockID)
	}
}

// -----------------------------------------------------------------------------

// BuildView runs one analysis pass outside the HTTP handlers (websocket path).
func (s *DashboardServer) BuildView(ctx context.Context, cmd models.MAnalyzeCommand) *models.MDashboardView {
	return s.Views.Build(ctx, cmd)
}
