package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/killallgit/resume-api/api/types"
	"github.com/killallgit/resume-api/pkg/config"
	"github.com/killallgit/resume-api/pkg/logger"
)

// Server represents the HTTP server
type Server struct {
	engine             *gin.Engine
	httpServer         *http.Server
	cfg                *config.Config
	rateLimiters       *sync.Map
	cleanupInitialized sync.Once
	cleanupStop        chan struct{}
	stopOnce           sync.Once

	// Dependencies for handlers
	dependencies *types.Dependencies
}

// NewServer creates a new HTTP server from the server and security settings
func NewServer(cfg *config.Config, deps *types.Dependencies) *Server {
	if cfg == nil {
		cfg = &config.Config{}
	}
	if deps == nil {
		deps = &types.Dependencies{}
	}
	if deps.Config == nil {
		deps.Config = cfg
	}
	deps.Logger = logger.OrNop(deps.Logger)

	// Create Gin engine with recovery middleware only
	engine := gin.New()
	engine.Use(gin.Recovery())

	server := &Server{
		engine:       engine,
		cfg:          cfg,
		rateLimiters: &sync.Map{},
		cleanupStop:  make(chan struct{}),
		dependencies: deps,
	}

	readTimeout := orDefault(cfg.Server.ReadTimeout, 30*time.Second)
	writeTimeout := orDefault(cfg.Server.WriteTimeout, 30*time.Second)
	maxHeaderBytes := cfg.Server.MaxHeaderBytes
	if maxHeaderBytes <= 0 {
		maxHeaderBytes = 1 << 20 // 1 MB
	}

	server.httpServer = &http.Server{
		Addr:           cfg.Server.Address(),
		Handler:        NewCORS(cfg.Security.CORSOrigins).Handler(engine),
		ReadTimeout:    readTimeout,
		WriteTimeout:   writeTimeout,
		IdleTimeout:    30 * time.Second,
		MaxHeaderBytes: maxHeaderBytes,
	}

	return server
}

func orDefault(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}

// Engine returns the Gin engine for testing
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Handler returns the full handler chain, CORS included
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Initialize sets up middleware and routes
func (s *Server) Initialize() error {
	s.setupMiddleware()
	return s.setupRoutes()
}

// setupMiddleware configures global middleware
func (s *Server) setupMiddleware() {
	if s.cfg.Security.EnableRequestID {
		s.engine.Use(RequestID())
	}

	s.engine.Use(RequestLogger(s.dependencies.Logger))

	if s.cfg.Security.MaxBodyBytes > 0 {
		s.engine.Use(RequestSizeLimitWithSize(s.cfg.Security.MaxBodyBytes))
	} else {
		s.engine.Use(RequestSizeLimit())
	}
}

// setupRoutes delegates to the main route registration
func (s *Server) setupRoutes() error {
	return RegisterRoutes(s.engine, s.dependencies, s.rateLimiters, s.cleanupStop, &s.cleanupInitialized)
}

// Start starts the HTTP server
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	// Stop the rate limiter cleanup goroutine
	s.stopOnce.Do(func() { close(s.cleanupStop) })

	return s.httpServer.Shutdown(ctx)
}
