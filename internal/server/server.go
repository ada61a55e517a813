// Package server sets up the HTTP server with all routes
package server

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/ayotona/rentora/internal/admin"
	"github.com/ayotona/rentora/internal/config"
	"github.com/ayotona/rentora/internal/health"
	"github.com/ayotona/rentora/internal/inspections"
	"github.com/ayotona/rentora/internal/listings"
	"github.com/ayotona/rentora/internal/logging"
	"github.com/ayotona/rentora/internal/metrics"
	"github.com/ayotona/rentora/internal/payments"
	"github.com/ayotona/rentora/internal/ratelimit"
	"github.com/ayotona/rentora/internal/security"
	"github.com/ayotona/rentora/internal/unlocks"
	"github.com/ayotona/rentora/internal/users"
	"github.com/ayotona/rentora/internal/validation"
	"github.com/ayotona/rentora/internal/verification"
	"github.com/ayotona/rentora/internal/wallet"
)

// migrator is implemented by every Postgres store in the repo.
type migrator interface {
	Migrate(ctx context.Context) error
}

// Server wraps the HTTP server and dependencies
type Server struct {
	cfg *config.Config

	usersService        *users.Service
	walletService       *wallet.Service
	listingsService     *listings.Service
	unlocksService      *unlocks.Service
	inspectionsService  *inspections.Service
	paymentsService     *payments.Service
	verificationService *verification.Service
	adminService        *admin.Service

	rateLimiter  *ratelimit.Limiter
	healthChecks *health.Registry
	db           *sql.DB // nil if using in-memory
	router       *gin.Engine
	httpSrv      *http.Server
	logger       *slog.Logger
	cancelRunCtx context.CancelFunc

	// Health state
	ready   atomic.Bool
	healthy atomic.Bool
}

// Option configures the server
type Option func(*Server)

// WithLogger sets a custom logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// New creates a new server instance
func New(cfg *config.Config, opts ...Option) (*Server, error) {
	s := &Server{
		cfg:          cfg,
		logger:       logging.New(cfg.LogLevel, "json"),
		healthChecks: health.NewRegistry(),
	}

	for _, opt := range opts {
		opt(s)
	}

	ctx := context.Background()

	var (
		userStore  users.Store
		walletSt   wallet.Store
		listingSt  listings.Store
		unlockSt   unlocks.Store
		inspSt     inspections.Store
		paySt      payments.Store
		verifSt    verification.Store
		userCount  admin.UserCounter
		propCount  admin.PropertyCounter
		inspCount  admin.InspectionCounter
	)

	// Storage: Postgres if DATABASE_URL set, otherwise in-memory.
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}

		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)

		if err := db.Ping(); err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}

		s.db = db
		s.healthChecks.RegisterDB("postgres", db)
		s.logger.Info("using PostgreSQL storage", "url", maskDSN(cfg.DatabaseURL))

		userPg := users.NewPostgresStore(db)
		walletPg := wallet.NewPostgresStore(db)
		listingPg := listings.NewPostgresStore(db)
		unlockPg := unlocks.NewPostgresStore(db)
		inspPg := inspections.NewPostgresStore(db)
		payPg := payments.NewPostgresStore(db)
		verifPg := verification.NewPostgresStore(db)

		for name, m := range map[string]migrator{
			"users":        userPg,
			"wallets":      walletPg,
			"properties":   listingPg,
			"unlocks":      unlockPg,
			"inspections":  inspPg,
			"payments":     payPg,
			"verification": verifPg,
		} {
			if err := m.Migrate(ctx); err != nil {
				s.logger.Warn("failed to migrate store", "store", name, "error", err)
			}
		}

		userStore, walletSt, listingSt = userPg, walletPg, listingPg
		unlockSt, inspSt, paySt, verifSt = unlockPg, inspPg, payPg, verifPg
		userCount, propCount, inspCount = userPg, listingPg, inspPg
	} else {
		s.logger.Info("using in-memory storage (data will not persist)")

		userMem := users.NewMemoryStore()
		listingMem := listings.NewMemoryStore()
		inspMem := inspections.NewMemoryStore()

		userStore, walletSt, listingSt = userMem, wallet.NewMemoryStore(), listingMem
		unlockSt, inspSt = unlocks.NewMemoryStore(), inspMem
		paySt, verifSt = payments.NewMemoryStore(), verification.NewMemoryStore()
		userCount, propCount, inspCount = userMem, listingMem, inspMem
	}

	// Services. Payments and inspections reference each other, so the
	// cross links are attached after construction.
	s.walletService = wallet.NewService(walletSt)
	s.usersService = users.NewService(userStore, s.walletService, cfg.JWTSecret, time.Duration(cfg.TokenTTLHrs)*time.Hour)
	s.listingsService = listings.NewService(listingSt)
	s.unlocksService = unlocks.NewService(unlockSt, s.listingsService, s.walletService)
	s.inspectionsService = inspections.NewService(inspSt, s.listingsService, s.usersService)
	s.paymentsService = payments.NewService(paySt, s.walletService, payments.Config{
		TokenPrice:       cfg.TokenPriceNGN,
		InspectionFee:    cfg.InspectionFeeNGN,
		CheckoutBaseURL:  cfg.CheckoutBaseURL,
		PublicKey:        cfg.KorapayPublicKey,
		WebhookSecret:    cfg.KorapayWebhookSecret,
		EnableSimulation: cfg.EnablePaymentSimulation,
	})
	s.paymentsService.SetInspections(s.inspectionsService)
	s.inspectionsService.SetPayments(s.paymentsService)
	s.verificationService = verification.NewService(verifSt, s.usersService)
	s.adminService = admin.NewService(userCount, propCount, inspCount, s.verificationService, s.paymentsService)

	if cfg.KorapayWebhookSecret == "" {
		s.logger.Warn("webhook secret not configured, signature verification disabled")
	}
	if cfg.EnablePaymentSimulation {
		s.logger.Warn("payment simulation enabled, do not use in production")
	}

	// Configure gin
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	s.router = gin.New()
	s.setupMiddleware()
	s.setupRoutes()

	s.healthy.Store(true)

	return s, nil
}

// maskDSN hides password in connection string for logging
func maskDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return "***"
	}
	if u.User != nil {
		u.User = url.UserPassword(u.User.Username(), "***")
	}
	return u.String()
}

// -----------------------------------------------------------------------------
// Middleware
// -----------------------------------------------------------------------------

func (s *Server) setupMiddleware() {
	// Recovery with logging
	s.router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logging.L(c.Request.Context()).Error("panic recovered",
			"error", recovered,
			"path", c.Request.URL.Path,
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "An unexpected error occurred",
		})
	}))

	// Security headers
	s.router.Use(security.HeadersMiddleware())

	// CORS
	s.router.Use(security.CORSMiddleware(s.cfg.AllowedOrigins))

	// Request size limit (1MB)
	s.router.Use(validation.RequestSizeMiddleware(validation.MaxRequestSize))

	// Rate limiting
	rlCfg := ratelimit.DefaultConfig()
	if s.cfg.RateLimitRPM > 0 {
		rlCfg.RequestsPerMinute = s.cfg.RateLimitRPM
	}
	s.rateLimiter = ratelimit.New(rlCfg)
	s.router.Use(s.rateLimiter.Middleware())

	// Prometheus metrics
	s.router.Use(metrics.Middleware())

	// Request ID
	s.router.Use(s.requestIDMiddleware())

	// Logging
	s.router.Use(s.loggingMiddleware())
}

func (s *Server) requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Check for existing request ID (from load balancer, etc.)
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = generateRequestID()
		}

		ctx := logging.WithRequestID(c.Request.Context(), requestID)
		ctx = logging.WithLogger(ctx, s.logger)
		c.Request = c.Request.WithContext(ctx)

		c.Header("X-Request-ID", requestID)

		c.Next()
	}
}

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		logger := logging.L(c.Request.Context())

		// Log level based on status code
		switch {
		case status >= 500:
			logger.Error("request completed",
				"method", c.Request.Method,
				"path", path,
				"status", status,
				"latency_ms", latency.Milliseconds(),
				"client_ip", c.ClientIP(),
			)
		case status >= 400:
			logger.Warn("request completed",
				"method", c.Request.Method,
				"path", path,
				"status", status,
				"latency_ms", latency.Milliseconds(),
			)
		default:
			logger.Info("request completed",
				"method", c.Request.Method,
				"path", path,
				"status", status,
				"latency_ms", latency.Milliseconds(),
			)
		}
	}
}

// -----------------------------------------------------------------------------
// Routes
// -----------------------------------------------------------------------------

func (s *Server) setupRoutes() {
	// Health & metrics endpoints
	s.router.GET("/health", s.healthHandler)
	s.router.GET("/health/live", s.livenessHandler)
	s.router.GET("/health/ready", s.readinessHandler)
	s.router.GET("/metrics", metrics.Handler())

	usersHandler := users.NewHandler(s.usersService, s.walletService)
	walletHandler := wallet.NewHandler(s.walletService)
	listingsHandler := listings.NewHandler(s.listingsService, s.unlocksService)
	unlocksHandler := unlocks.NewHandler(s.unlocksService)
	inspectionsHandler := inspections.NewHandler(s.inspectionsService)
	paymentsHandler := payments.NewHandler(s.paymentsService)
	verificationHandler := verification.NewHandler(s.verificationService)
	adminHandler := admin.NewHandler(s.adminService)

	api := s.router.Group("/api")
	// Bearer tokens are resolved for every request; the gates below
	// decide who gets through.
	api.Use(users.Middleware(s.usersService))

	// PUBLIC ROUTES (no auth required)
	usersHandler.RegisterRoutes(api)
	listingsHandler.RegisterRoutes(api)
	paymentsHandler.RegisterRoutes(api) // webhook: the signature is the auth

	// PROTECTED ROUTES (require a valid token)
	protected := api.Group("")
	protected.Use(users.RequireAuth())
	{
		usersHandler.RegisterProtectedRoutes(protected)
		walletHandler.RegisterProtectedRoutes(protected)
		listingsHandler.RegisterProtectedRoutes(protected)
		unlocksHandler.RegisterProtectedRoutes(protected)
		inspectionsHandler.RegisterProtectedRoutes(protected)
		paymentsHandler.RegisterProtectedRoutes(protected)
		verificationHandler.RegisterProtectedRoutes(protected)
	}

	// ADMIN ROUTES
	adminGroup := api.Group("/admin")
	adminGroup.Use(users.RequireAuth(), users.RequireRoles(users.RoleAdmin))
	{
		usersHandler.RegisterAdminRoutes(adminGroup)
		walletHandler.RegisterAdminRoutes(adminGroup)
		listingsHandler.RegisterAdminRoutes(adminGroup)
		inspectionsHandler.RegisterAdminRoutes(adminGroup)
		paymentsHandler.RegisterAdminRoutes(adminGroup)
		verificationHandler.RegisterAdminRoutes(adminGroup)
		adminHandler.RegisterAdminRoutes(adminGroup)
	}
}

// -----------------------------------------------------------------------------
// Health handlers
// -----------------------------------------------------------------------------

// HealthResponse is the /health payload.
type HealthResponse struct {
	Status    string          `json:"status"`
	Version   string          `json:"version"`
	Checks    []health.Status `json:"checks,omitempty"`
	Timestamp string          `json:"timestamp"`
}

func (s *Server) healthHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	healthy, statuses := s.healthChecks.CheckAll(ctx)

	status := "healthy"
	httpStatus := http.StatusOK
	if !healthy {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	c.JSON(httpStatus, HealthResponse{
		Status:    status,
		Version:   "0.1.0",
		Checks:    statuses,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) livenessHandler(c *gin.Context) {
	if !s.healthy.Load() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

func (s *Server) readinessHandler(c *gin.Context) {
	if !s.ready.Load() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// -----------------------------------------------------------------------------
// Lifecycle
// -----------------------------------------------------------------------------

// Run starts the server and blocks until shutdown
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	s.cancelRunCtx = cancel
	defer cancel()

	s.httpSrv = &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errChan := make(chan error, 1)

	go func() {
		s.logger.Info("starting server", "port", s.cfg.Port, "env", s.cfg.Env)
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	// Mark as ready after brief delay for startup
	go func() {
		time.Sleep(100 * time.Millisecond)
		s.ready.Store(true)
		s.logger.Info("server ready")
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		s.logger.Info("shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		s.logger.Info("context cancelled")
	}

	return s.Shutdown()
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown() error {
	s.ready.Store(false)
	s.logger.Info("starting graceful shutdown")

	if s.cancelRunCtx != nil {
		s.cancelRunCtx()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if s.httpSrv != nil {
		if err := s.httpSrv.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}

	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
		s.logger.Info("rate limiter stopped")
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("database close error", "error", err)
		} else {
			s.logger.Info("database connection closed")
		}
	}

	s.logger.Info("server stopped")
	return nil
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func generateRequestID() string {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to timestamp-based ID
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(bytes)
}
