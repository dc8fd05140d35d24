// Package http provides the HTTP API for ragd.
package http

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/ragd/internal/auth"
	"github.com/fyrsmithlabs/ragd/internal/rag"
	"github.com/fyrsmithlabs/ragd/internal/sanitize"
)

// Server provides HTTP endpoints for ragd.
type Server struct {
	echo        *echo.Echo
	credentials *auth.Store
	pipeline    *rag.Service
	adminSecret string
	logger      *zap.Logger
	config      *Config
}

// Config holds HTTP server configuration.
type Config struct {
	Host string
	Port int
}

// NewServer creates a new HTTP server.
func NewServer(credentials *auth.Store, pipeline *rag.Service, adminSecret string, logger *zap.Logger, cfg *Config) (*Server, error) {
	if credentials == nil {
		return nil, fmt.Errorf("credential store cannot be nil")
	}
	if pipeline == nil {
		return nil, fmt.Errorf("pipeline service cannot be nil")
	}
	if adminSecret == "" {
		return nil, fmt.Errorf("admin secret is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = &Config{
			Host: "0.0.0.0",
			Port: 8000,
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			duration := time.Since(start)

			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", duration),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)

			return err
		}
	})

	s := &Server{
		echo:        e,
		credentials: credentials,
		pipeline:    pipeline,
		adminSecret: adminSecret,
		logger:      logger,
		config:      cfg,
	}

	s.registerRoutes()

	return s, nil
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes() {
	s.echo.GET("/", s.handleRoot)
	s.echo.GET("/health", s.handleHealth)

	// Tenant routes
	s.echo.POST("/upload_pdf", s.handleUpload)
	s.echo.POST("/query", s.handleQuery)
	s.echo.POST("/list_pdfs", s.handleListDocuments)
	s.echo.POST("/delete_pdf", s.handleDeleteDocument)

	// Admin routes
	admin := s.echo.Group("/admin")
	admin.POST("/create_user", s.handleCreateUser)
	admin.POST("/delete_user", s.handleDeleteUser)
	admin.POST("/list_users", s.handleListUsers)
}

// requireTenant verifies tenant credentials. The refusal is uniform for
// unknown users and wrong passwords so usernames cannot be enumerated.
func (s *Server) requireTenant(username, password string) error {
	if !s.credentials.Verify(username, password) {
		return echo.NewHTTPError(http.StatusForbidden, "invalid credentials")
	}
	return nil
}

// requireAdmin verifies the administrative shared secret. Independent of
// tenant credentials: knowing the secret grants no tenant access.
func (s *Server) requireAdmin(secret string) error {
	if subtle.ConstantTimeCompare([]byte(secret), []byte(s.adminSecret)) != 1 {
		return echo.NewHTTPError(http.StatusForbidden, "forbidden")
	}
	return nil
}

// mapError converts pipeline and store errors to HTTP status codes.
func mapError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, auth.ErrUserExists):
		return echo.NewHTTPError(http.StatusConflict, "user already exists")
	case errors.Is(err, auth.ErrUserNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	case errors.Is(err, rag.ErrDocumentNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "document not found")
	case errors.Is(err, rag.ErrExtraction):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "document could not be processed")
	case errors.Is(err, rag.ErrStorage), errors.Is(err, rag.ErrRetrieval), errors.Is(err, rag.ErrGeneration):
		return echo.NewHTTPError(http.StatusBadGateway, "upstream service failure")
	case errors.Is(err, sanitize.ErrInvalidUsername), errors.Is(err, sanitize.ErrInvalidFilename):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}

// handleRoot reports that the service is running.
func (s *Server) handleRoot(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"message": "RAG backend is running"})
}

// handleHealth returns a simple health check response.
func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// handleUpload ingests an uploaded document into the tenant's collection.
func (s *Server) handleUpload(c echo.Context) error {
	username := c.FormValue("username")
	password := c.FormValue("password")

	if err := s.requireTenant(username, password); err != nil {
		return err
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file field is required")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable upload")
	}
	defer src.Close()

	result, err := s.pipeline.Ingest(c.Request().Context(), username, fileHeader.Filename, src)
	if err != nil {
		s.logger.Warn("ingest failed",
			zap.String("username", username),
			zap.String("filename", fileHeader.Filename),
			zap.Error(err),
		)
		return mapError(err)
	}

	return c.JSON(http.StatusOK, UploadResponse{
		Status: "uploaded and embedded",
		File:   result.Filename,
		Chunks: result.Chunks,
	})
}

// handleQuery answers a question grounded in the tenant's documents.
func (s *Server) handleQuery(c echo.Context) error {
	var req QueryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Message == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "message field is required")
	}

	if err := s.requireTenant(req.Username, req.Password); err != nil {
		return err
	}

	answer, err := s.pipeline.Answer(c.Request().Context(), req.Username, req.Message)
	if err != nil {
		s.logger.Warn("query failed", zap.String("username", req.Username), zap.Error(err))
		return mapError(err)
	}

	return c.JSON(http.StatusOK, QueryResponse{Response: answer})
}

// handleListDocuments lists the tenant's uploaded documents.
func (s *Server) handleListDocuments(c echo.Context) error {
	var req AuthRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := s.requireTenant(req.Username, req.Password); err != nil {
		return err
	}

	docs, err := s.pipeline.ListDocuments(c.Request().Context(), req.Username)
	if err != nil {
		return mapError(err)
	}

	return c.JSON(http.StatusOK, ListDocumentsResponse{Documents: docs})
}

// handleDeleteDocument removes a tenant document and its chunks.
func (s *Server) handleDeleteDocument(c echo.Context) error {
	var req DeleteDocumentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Filename == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "filename field is required")
	}

	if err := s.requireTenant(req.Username, req.Password); err != nil {
		return err
	}

	if err := s.pipeline.DeleteDocument(c.Request().Context(), req.Username, req.Filename); err != nil {
		return mapError(err)
	}

	return c.JSON(http.StatusOK, DeleteDocumentResponse{Status: "deleted", File: req.Filename})
}

// handleCreateUser registers a new user and provisions its workspace.
func (s *Server) handleCreateUser(c echo.Context) error {
	var req CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := s.requireAdmin(req.Secret); err != nil {
		return err
	}

	if err := s.credentials.Add(req.Username, req.Password); err != nil {
		return mapError(err)
	}
	if err := s.pipeline.CreateTenant(c.Request().Context(), req.Username); err != nil {
		return mapError(err)
	}

	return c.JSON(http.StatusOK, MessageResponse{
		Message: fmt.Sprintf("user %q created", req.Username),
	})
}

// handleDeleteUser removes a user and cascades to its workspace and
// collection. The cascade is best-effort: credential removal is the
// authoritative step, teardown failures are logged but do not fail the call.
func (s *Server) handleDeleteUser(c echo.Context) error {
	var req DeleteUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := s.requireAdmin(req.Secret); err != nil {
		return err
	}

	if err := s.credentials.Delete(req.Username); err != nil {
		return mapError(err)
	}
	if err := s.pipeline.DestroyTenant(c.Request().Context(), req.Username); err != nil {
		s.logger.Warn("tenant teardown incomplete",
			zap.String("username", req.Username),
			zap.Error(err),
		)
	}

	return c.JSON(http.StatusOK, MessageResponse{
		Message: fmt.Sprintf("user %q deleted", req.Username),
	})
}

// handleListUsers lists all registered usernames.
func (s *Server) handleListUsers(c echo.Context) error {
	var req AdminRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := s.requireAdmin(req.Secret); err != nil {
		return err
	}

	users, err := s.credentials.List()
	if err != nil {
		return mapError(err)
	}

	return c.JSON(http.StatusOK, ListUsersResponse{Users: users})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info("starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}
