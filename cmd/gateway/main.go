package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	api "github.com/pacewise/pacewise-progress/internal/api/http"
	"github.com/pacewise/pacewise-progress/internal/assessment"
	auth "github.com/pacewise/pacewise-progress/internal/auth/middleware"
	"github.com/pacewise/pacewise-progress/internal/config"
	"github.com/pacewise/pacewise-progress/internal/db"
	"github.com/pacewise/pacewise-progress/internal/oracle"
	"github.com/pacewise/pacewise-progress/internal/progress"
	"github.com/pacewise/pacewise-progress/internal/rbac"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	log := logrus.New()
	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(lvl)
	}

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}

	progStore := progress.NewSQLStore(dbh, cfg.DBDriver)
	engine := progress.NewEngine(progStore, log)
	initializer := progress.NewInitializer(progStore, cfg.InitChunkSize, log)

	solOracle := oracle.New(cfg.OracleBaseURL, cfg.ServiceName, cfg.OracleSecret)
	assessStore := assessment.NewSQLStore(dbh, cfg.DBDriver)
	assessSvc := assessment.NewService(assessStore, solOracle, log)

	// --- Auth ---
	authSvc := auth.NewAuthService(cfg.AuthHMACSecret)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", auth.LoginHandler(authSvc, auth.LoginCreds{
		AdminUser:     cfg.AdminUser,
		AdminPassHash: cfg.AdminPassHash,
	}))

	// Protected API (JWT → role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))

		pr.With(rbac.Require("progress:initialize")).
			Post("/progress/initialize", api.InitializeProgressHandler(initializer))

		pr.With(rbac.Require("progress:advance")).
			Post("/progress/section-items/{sectionItemID}/advance", api.AdvanceSectionItemHandler(engine))

		pr.With(rbac.Require("progress:view")).
			Get("/progress/course", api.GetCourseProgressHandler(progStore))
		pr.With(rbac.Require("progress:view")).
			Get("/progress/modules/{moduleID}", api.GetModuleProgressHandler(progStore))
		pr.With(rbac.Require("progress:view")).
			Get("/progress/sections/{sectionID}", api.GetSectionProgressHandler(progStore))
		pr.With(rbac.Require("progress:view")).
			Get("/progress/section-items/{sectionItemID}", api.GetSectionItemProgressHandler(progStore))

		pr.With(rbac.Require("attempt:create")).
			Post("/attempts", api.StartAttemptHandler(assessSvc))
		pr.With(rbac.Require("attempt:submit")).
			Post("/attempts/{attemptID}/submit", api.SubmitAssessmentHandler(assessSvc))
	})

	log.Infof("gateway listening on %s", cfg.HTTPAddr)
	if err := http.ListenAndServe(cfg.HTTPAddr, r); err != nil {
		log.Fatalf("http server: %v", err)
	}
}
