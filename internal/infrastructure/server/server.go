package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	_ "github.com/stickyboard/core/docs"
	httpHandlers "github.com/stickyboard/core/internal/adapters/http"
	"github.com/stickyboard/core/internal/infrastructure/config"
	"github.com/stickyboard/core/internal/infrastructure/database"
	"github.com/stickyboard/core/internal/infrastructure/logger"
)

// NonceHeader carries the anti-forgery token on board writes.
const NonceHeader = "X-Sticky-Nonce"

const boardPrefix = "/api/v1/board"

// Server represents the HTTP server
type Server struct {
	echo     *echo.Echo
	config   *config.Config
	logger   *logger.Logger
	db       *database.DB
	services *Services
}

// CustomValidator wraps the validator
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates structs
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// New creates a new server instance
func New(cfg *config.Config, db *database.DB, svc *Services, appLogger *logger.Logger) (*Server, error) {
	e := echo.New()

	e.Validator = &CustomValidator{validator: validator.New()}
	e.JSONSerializer = httpHandlers.SonicSerializer{}

	e.Debug = cfg.App.Debug && cfg.App.IsDevelopment()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout
	e.Server.IdleTimeout = cfg.Server.IdleTimeout

	e.HTTPErrorHandler = customErrorHandler(appLogger)

	server := &Server{
		echo:     e,
		config:   cfg,
		logger:   appLogger,
		db:       db,
		services: svc,
	}

	server.setupMiddleware()
	server.setupRoutes(
		httpHandlers.NewAuthHandler(svc.Auth, appLogger),
		httpHandlers.NewUserHandler(svc.Users, appLogger),
		httpHandlers.NewBoardHandler(svc.Board, cfg.Board.DefaultColor, appLogger),
	)

	return server, nil
}

// Echo exposes the router, mainly for tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware() {
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.RequestID())

	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogError:     true,
		LogRequestID: true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, values middleware.RequestLoggerValues) error {
			s.logger.LogHTTPRequest(
				values.Method,
				values.URI,
				values.RequestID,
				values.Status,
				float64(values.Latency.Nanoseconds())/1e6,
				values.Error,
			)
			return nil
		},
	}))

	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     strings.Split(s.config.Security.CORSAllowedOrigins, ","),
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, NonceHeader},
		AllowMethods:     []string{http.MethodGet, http.MethodHead, http.MethodPut, http.MethodPost, http.MethodDelete},
		AllowCredentials: true,
	}))

	if s.config.Security.RateLimitRequests > 0 && s.config.Security.RateLimitWindow > 0 {
		s.echo.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
			Skipper: func(c echo.Context) bool {
				return c.Path() == "/health" || c.Path() == "/ready" || c.Path() == "/metrics"
			},
			Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(float64(s.config.Security.RateLimitRequests) / s.config.Security.RateLimitWindow.Seconds()),
				Burst:     s.config.Security.RateLimitRequests,
				ExpiresIn: s.config.Security.RateLimitWindow,
			}),
			IdentifierExtractor: func(ctx echo.Context) (string, error) {
				return ctx.RealIP(), nil
			},
			ErrorHandler: func(c echo.Context, err error) error {
				return echo.NewHTTPError(http.StatusForbidden, "rate limit exceeded")
			},
			DenyHandler: func(c echo.Context, identifier string, err error) error {
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			},
		}))
	}

	s.echo.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
		HSTSMaxAge:         31536000,
	}))

	s.echo.Use(middleware.ContextTimeout(30 * time.Second))

	if s.config.Metrics.Enabled {
		s.echo.Use(s.services.Metrics.Middleware())
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes(authHandler *httpHandlers.AuthHandler, userHandler *httpHandlers.UserHandler, boardHandler *httpHandlers.BoardHandler) {
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/ready", s.readinessCheck)

	if s.config.Metrics.Enabled {
		s.echo.GET("/metrics", echo.WrapHandler(s.services.Metrics.Handler()))
	}

	s.echo.GET("/swagger/*", echoSwagger.WrapHandler)

	v1 := s.echo.Group("/api/v1")

	authGroup := v1.Group("/auth")
	authGroup.POST("/login", authHandler.Login)

	userGroup := v1.Group("/users", s.authMiddleware())
	userGroup.GET("/me", userHandler.GetCurrentUser)

	board := v1.Group("/board", s.authMiddleware(), s.nonceMiddleware())
	board.GET("/nonce", boardHandler.Nonce)
	board.GET("/presets", boardHandler.Presets)
	board.GET("/notes", boardHandler.ListNotes)
	board.POST("/notes", boardHandler.AddNote)
	board.GET("/notes/:id", boardHandler.GetNote)
	board.DELETE("/notes/:id", boardHandler.DeleteNote)
	board.PUT("/notes/:id/title", boardHandler.RenameNote)
	board.PUT("/notes/:id/color", boardHandler.RecolorNote)
	board.PUT("/notes/:id/visibility", boardHandler.SetVisibility)
	board.PUT("/notes/:id/checklist", boardHandler.SetChecklist)
	board.PUT("/notes/:id/collapsed", boardHandler.ToggleCollapsed)
	board.PUT("/order", boardHandler.ReorderBoard)
}

// Health check handlers
func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) readinessCheck(c echo.Context) error {
	ctx := c.Request().Context()
	checks := make(map[string]interface{})
	ready := true

	if err := s.db.HealthCheck(ctx); err != nil {
		ready = false
		checks["database"] = map[string]string{"status": "error", "error": err.Error()}
	} else {
		checks["database"] = map[string]interface{}{"status": "ok", "stats": s.db.GetConnectionInfo()}
	}

	if s.services.CacheEnabled() {
		if err := s.services.PingCache(ctx); err != nil {
			checks["cache"] = map[string]string{"status": "degraded", "error": err.Error()}
		} else {
			checks["cache"] = map[string]string{"status": "ok"}
		}
	}

	response := map[string]interface{}{
		"status":  "ready",
		"time":    time.Now().UTC().Format(time.RFC3339),
		"checks":  checks,
		"version": s.config.App.Version,
	}
	if !ready {
		response["status"] = "not_ready"
		return c.JSON(http.StatusServiceUnavailable, response)
	}
	return c.JSON(http.StatusOK, response)
}

// Start starts the HTTP server
func (s *Server) Start(address string) error {
	s.logger.Infow("Starting server", "address", address)
	return s.echo.Start(address)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Infow("Shutting down server")
	return s.echo.Shutdown(ctx)
}

// customErrorHandler renders errors as JSON. Errors on board routes use
// the board envelope.
func customErrorHandler(logger *logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		message := http.StatusText(code)

		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			message = fmt.Sprint(he.Message)
			if he.Internal != nil {
				err = fmt.Errorf("%v, %v", err, he.Internal)
			}
		} else if ve, ok := err.(validator.ValidationErrors); ok {
			code = http.StatusBadRequest
			message = ve.Error()
		}

		if code == http.StatusInternalServerError {
			logger.Errorw("Internal server error", "error", err, "path", c.Request().URL.Path)
		}

		var body interface{} = httpHandlers.ErrorResponse{Error: message}
		if strings.HasPrefix(c.Request().URL.Path, boardPrefix) {
			body = httpHandlers.Envelope{Success: false, ErrorMessage: message}
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, body)
		}
		if err != nil {
			logger.Errorw("Error sending response", "error", err)
		}
	}
}
