// Package gin serves the stackdoc HTTP API using the gin web framework.
package gin

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/fwojciec/stackdoc"
	"github.com/fwojciec/stackdoc/collab"
	"github.com/fwojciec/stackdoc/docsync"
	"github.com/fwojciec/stackdoc/ingest"
	"github.com/gin-gonic/gin"
)

// DefaultMaxBodyBytes limits request bodies. Trees for long documents fit
// comfortably.
const DefaultMaxBodyBytes = 4 << 20

// ShutdownTimeout bounds graceful shutdown in Close.
const ShutdownTimeout = 5 * time.Second

// Config holds the server settings.
type Config struct {
	Addr           string
	MaxBodyBytes   int64
	AllowedOrigins []string
}

// Server is the HTTP entry point for the API.
type Server struct {
	engine *gin.Engine
	server *http.Server
	ln     net.Listener
	cfg    Config
	logger *slog.Logger
}

// NewServer builds the engine and registers every route on it.
// Callers pick the gin mode before building servers.
func NewServer(cfg Config, api *API) *Server {
	if cfg.MaxBodyBytes == 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(RequestLogger(api.logger()))
	engine.Use(MaxBodySize(cfg.MaxBodyBytes))
	engine.Use(CORS(cfg.AllowedOrigins))

	registerRoutes(engine, api)

	return &Server{
		engine: engine,
		server: &http.Server{Handler: engine, ReadHeaderTimeout: 10 * time.Second},
		cfg:    cfg,
		logger: api.logger(),
	}
}

// Handler returns the engine for use with httptest.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Open starts listening on the configured address and serves in the
// background.
func (s *Server) Open() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	s.ln = ln

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("server stopped", "error", err)
		}
	}()
	return nil
}

// Addr returns the bound address once the server is open.
func (s *Server) Addr() string {
	if s.ln == nil {
		return s.cfg.Addr
	}
	return s.ln.Addr().String()
}

// Close gracefully shuts down the server.
func (s *Server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// API holds the services the handlers call.
type API struct {
	Extractor stackdoc.Extractor
	Scraper   stackdoc.Scraper
	Parser    stackdoc.InputParser
	Projects  stackdoc.ProjectService
	Documents stackdoc.DocumentService
	Pipeline  *ingest.Pipeline
	Sessions  *docsync.Controller
	Hub       *collab.Hub
	Logger    *slog.Logger
}

func (a *API) logger() *slog.Logger {
	if a.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return a.Logger
}

func registerRoutes(r *gin.Engine, api *API) {
	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/health", api.handleHealth)

		apiGroup.POST("/scrape", api.handleScrape)
		apiGroup.POST("/extract", api.handleExtract)
		apiGroup.POST("/parse", api.handleParse)

		apiGroup.GET("/projects", api.handleListProjects)
		apiGroup.POST("/projects", api.handleCreateProject)
		apiGroup.PATCH("/projects/:id", api.handleRenameProject)
		apiGroup.DELETE("/projects/:id", api.handleDeleteProject)
		apiGroup.GET("/projects/:id/documents", api.handleListDocuments)
		apiGroup.POST("/projects/:id/documents", api.handleAddDocument)

		apiGroup.GET("/documents/:id", api.handleGetDocument)
		apiGroup.DELETE("/documents/:id", api.handleDeleteDocument)
		apiGroup.GET("/documents/:id/presence", api.handlePresence)
		apiGroup.POST("/documents/:id/sessions", api.handleOpenSession)

		apiGroup.POST("/sessions/:id/changes", api.handleChange)
		apiGroup.DELETE("/sessions/:id", api.handleCloseSession)
	}
}

func (a *API) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
