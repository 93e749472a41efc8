package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/AI2HU/geolens/internal/config"
	"github.com/AI2HU/geolens/internal/db"
	"github.com/AI2HU/geolens/internal/geo"
	"github.com/AI2HU/geolens/internal/llm"
	"github.com/AI2HU/geolens/internal/logger"
	"github.com/AI2HU/geolens/internal/report"
	"github.com/AI2HU/geolens/internal/services"
)

// APIResponse is the standard envelope for non-paginated endpoints
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// Pagination describes the page window of a list response
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// PaginatedResponse is the envelope for paginated list endpoints
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Pagination Pagination  `json:"pagination"`
}

// Server hosts the HTTP API
type Server struct {
	cfg          *config.Config
	router       *gin.Engine
	sql          db.SQLDatabase
	nosql        db.NoSQLDatabase
	registry     *llm.Registry
	analyzer     *geo.Analyzer
	brandService *services.BrandService
	queryService *services.QueryService
	mailer       *report.Mailer
}

// NewServer wires the API server from its collaborators
func NewServer(
	cfg *config.Config,
	sqlDB db.SQLDatabase,
	nosqlDB db.NoSQLDatabase,
	registry *llm.Registry,
	analyzer *geo.Analyzer,
	brandService *services.BrandService,
	queryService *services.QueryService,
	mailer *report.Mailer,
) *Server {
	s := &Server{
		cfg:          cfg,
		sql:          sqlDB,
		nosql:        nosqlDB,
		registry:     registry,
		analyzer:     analyzer,
		brandService: brandService,
		queryService: queryService,
		mailer:       mailer,
	}
	s.router = s.setupRouter()
	return s
}

// Run starts the HTTP server and blocks
func (s *Server) Run() error {
	addr := s.cfg.Server.Addr()
	logger.Info("API server listening on %s", addr)
	return s.router.Run(addr)
}

// Router exposes the gin engine, mainly for tests
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) setupRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", s.health)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/sessions", s.createSession)
		v1.GET("/sessions/:id", s.getSession)

		v1.POST("/brand-info", s.discoverBrand)
		v1.POST("/generate-queries", s.generateQueries)

		v1.POST("/analyses", s.runAnalysis)
		v1.POST("/analyses/stream", s.streamAnalysis)
		v1.GET("/analyses", s.listAnalyses)
		v1.GET("/analyses/:id", s.getAnalysis)

		v1.GET("/models", s.listModels)

		v1.POST("/reports", s.sendReport)
		v1.GET("/reports", s.listReports)

		v1.POST("/schedules", s.createSchedule)
		v1.GET("/schedules", s.listSchedules)
		v1.GET("/schedules/:id", s.getSchedule)
		v1.PUT("/schedules/:id", s.updateSchedule)
		v1.DELETE("/schedules/:id", s.deleteSchedule)
	}

	return router
}

// health handles GET /health
func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (s *Server) errorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, APIResponse{
		Success: false,
		Message: message,
	})
}

func (s *Server) successResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
	})
}

func (s *Server) parsePagination(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}
