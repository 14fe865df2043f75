package api

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jackc/pgx/v5/pgxpool"

	swagger "github.com/go-swagno/swagno-fiber/swagger"

	"github.com/crewforge/checkpoint/internal/api/docs"
	"github.com/crewforge/checkpoint/internal/api/handler"
	"github.com/crewforge/checkpoint/internal/api/middleware"
	"github.com/crewforge/checkpoint/internal/attendance"
	"github.com/crewforge/checkpoint/internal/cache"
	"github.com/crewforge/checkpoint/internal/capture"
	"github.com/crewforge/checkpoint/internal/device"
	"github.com/crewforge/checkpoint/internal/enrollment"
	"github.com/crewforge/checkpoint/internal/matching"
	"github.com/crewforge/checkpoint/internal/repository"
	"github.com/crewforge/checkpoint/internal/verification"
	"github.com/crewforge/checkpoint/internal/webhook"
	"github.com/crewforge/checkpoint/internal/ws"
)

type Dependencies struct {
	CompanyRepo      *repository.CompanyRepository
	WorkerRepo       *repository.WorkerRepository
	TemplateRepo     *repository.TemplateRepository
	CredentialRepo   *repository.CredentialRepository
	VerificationRepo *repository.VerificationRepository
	LocationRepo     *repository.LocationCodeRepository
	AttendanceRepo   *repository.AttendanceRepository
	CaptureProvider  capture.Provider
	Authenticator    device.Authenticator
	Cache            *cache.PGCache
	MatchThreshold   float64
	DB               *pgxpool.Pool
}

type Router struct {
	app         *fiber.App
	logger      *slog.Logger
	deps        *Dependencies
	rateLimiter *middleware.RateLimiter
	lastUsed    *middleware.LastUsedWorker
	wsHub       *ws.Hub

	webhookWorker *webhook.Worker
	cancelWorker  context.CancelFunc
}

func NewRouter(logger *slog.Logger, deps *Dependencies) *Router {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(logger),
		AppName:      "Checkpoint API",
	})

	return &Router{
		app:    app,
		logger: logger,
		deps:   deps,
	}
}

func (r *Router) Setup() {
	// Global middlewares
	r.app.Use(requestid.New())
	r.app.Use(middleware.Recover(r.logger))
	r.app.Use(middleware.Logger(r.logger))
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Swagger documentation (no auth required)
	sw := docs.NewSwagger()
	swagger.SwaggerHandler(r.app, sw.MustToJson())

	// Health check endpoints (no auth required)
	healthHandler := handler.NewHealthHandler()
	r.app.Get("/health", healthHandler.Health)
	r.app.Get("/ready", healthHandler.Ready)

	// API v1 group with authentication
	v1 := r.app.Group("/v1")

	// Only configure authenticated routes if dependencies were provided
	if r.deps != nil {
		// WebSocket hub for progress and attendance broadcasts
		r.wsHub = ws.NewHub()
		go r.wsHub.Run()

		// Auth middleware, with async last_used stamping
		r.lastUsed = middleware.NewLastUsedWorker(r.deps.CompanyRepo, r.logger, middleware.DefaultLastUsedWorkerConfig())
		r.lastUsed.Start()
		v1.Use(middleware.Auth(r.deps.CompanyRepo, r.lastUsed))

		// Rate limiting (per company) - must come after auth to have company context
		r.rateLimiter = middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())
		v1.Use(r.rateLimiter.Handler())

		// Services
		enrollmentService := enrollment.NewService(
			r.deps.TemplateRepo,
			r.deps.CredentialRepo,
			r.deps.WorkerRepo,
			r.deps.CaptureProvider,
			r.deps.Authenticator,
			r.wsHub,
		)
		engine := matching.NewEngine()
		if r.deps.MatchThreshold > 0 {
			engine = engine.WithThreshold(r.deps.MatchThreshold)
		}
		verificationService := verification.NewService(
			r.deps.TemplateRepo,
			r.deps.CredentialRepo,
			r.deps.VerificationRepo,
			r.deps.WorkerRepo,
			r.deps.CaptureProvider,
			r.deps.Authenticator,
			engine,
		)
		var attendanceOpts []attendance.Option
		if r.deps.Cache != nil {
			attendanceOpts = append(attendanceOpts, attendance.WithDedupe(r.deps.Cache, attendance.DefaultDedupeWindow))
		}
		attendanceProcessor := attendance.NewProcessor(
			r.deps.LocationRepo,
			r.deps.WorkerRepo,
			r.deps.AttendanceRepo,
			r.deps.VerificationRepo,
			attendanceOpts...,
		)

		// Webhook delivery, with a queue worker for retries
		verifyNotify := verificationFanout{r.wsHub}
		attendNotify := attendanceFanout{r.wsHub}
		var webhookService *webhook.Service
		if r.deps.DB != nil {
			webhookService = webhook.NewService(r.deps.DB)
			dispatcher := webhook.NewDispatcher(webhookService, r.logger)
			verifyNotify = append(verifyNotify, dispatcher)
			attendNotify = append(attendNotify, dispatcher)

			r.webhookWorker = webhook.NewWorker(r.deps.DB, webhookService, r.logger)
			ctx, cancel := context.WithCancel(context.Background())
			r.cancelWorker = cancel
			go r.webhookWorker.Run(ctx)
		}

		// Handlers
		enrollmentHandler := handler.NewEnrollmentHandler(enrollmentService, r.deps.WorkerRepo)
		verificationHandler := handler.NewVerificationHandler(verificationService, r.deps.WorkerRepo, verifyNotify)
		attendanceHandler := handler.NewAttendanceHandler(attendanceProcessor, r.deps.WorkerRepo, attendNotify)
		templateHandler := handler.NewTemplateHandler(r.deps.TemplateRepo, r.deps.WorkerRepo)

		// Enrollment routes
		v1.Post("/enrollments", enrollmentHandler.Enroll)

		// Verification routes
		v1.Post("/verifications", verificationHandler.Verify)

		// Attendance routes
		v1.Post("/attendance/scans", attendanceHandler.Scan)
		v1.Get("/attendance/status/:worker_id", attendanceHandler.Status)
		v1.Get("/attendance/events/:worker_id", attendanceHandler.Events)

		// Template routes
		v1.Get("/templates/:worker_id", templateHandler.List)
		v1.Delete("/templates/:id", templateHandler.Deactivate)

		// Webhook routes
		if webhookService != nil {
			webhookHandler := handler.NewWebhookHandler(webhookService)
			v1.Post("/webhooks", webhookHandler.Create)
			v1.Get("/webhooks", webhookHandler.List)
			v1.Delete("/webhooks/:id", webhookHandler.Delete)
		}

		// WebSocket endpoint
		v1.Get("/ws", ws.UpgradeMiddleware(), ws.Handler(r.wsHub))
	}
}

func (r *Router) App() *fiber.App {
	return r.app
}

func (r *Router) Listen(addr string) error {
	return r.app.Listen(addr)
}

func (r *Router) Shutdown() error {
	// Stop background workers before the server
	if r.rateLimiter != nil {
		r.rateLimiter.Stop()
	}
	if r.lastUsed != nil {
		r.lastUsed.Stop()
	}
	if r.cancelWorker != nil {
		r.cancelWorker()
	}

	return r.app.Shutdown()
}
