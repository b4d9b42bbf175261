package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-jobmatch-backend/config"
	_ "go-jobmatch-backend/docs" // Important for Swagger
	v1 "go-jobmatch-backend/internal/delivery/http/v1"
	"go-jobmatch-backend/internal/domain"
	"go-jobmatch-backend/internal/repository/cache"
	"go-jobmatch-backend/internal/repository/postgres"
	"go-jobmatch-backend/internal/scoring"
	"go-jobmatch-backend/internal/usecase"
	"go-jobmatch-backend/pkg/analysis"
	"go-jobmatch-backend/pkg/audit"
	"go-jobmatch-backend/pkg/auth"
	"go-jobmatch-backend/pkg/database"
	"go-jobmatch-backend/pkg/logger"
	"go-jobmatch-backend/pkg/matchclient"
	"go-jobmatch-backend/pkg/redis"
	"go-jobmatch-backend/pkg/security/antivirus"
	"go-jobmatch-backend/pkg/storage"
	"go-jobmatch-backend/pkg/validation"
)

// @title           Job Match Backend API
// @version         1.0
// @description     CV analysis, job similarity scoring and match dashboards.
// @host            localhost:8080
// @BasePath        /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Loggers
	logger.Init(cfg.LogLevel)
	auditLog := audit.Init("jobmatch-backend", cfg.AppEnv)
	defer auditLog.Sync()
	logger.Log.Info("Starting job match backend", "port", cfg.Port, "env", cfg.AppEnv)

	ctx := context.Background()

	// 3. Setup Database
	dbPool, err := database.NewPostgresConnection(ctx, cfg.DBUrl)
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	// 4. Setup Redis (optional)
	if err := redis.Initialize(redis.Config{URL: cfg.UpstashRedisURL, Password: cfg.UpstashRedisPassword}); err != nil {
		logger.Log.Warn("Redis unavailable, using in-memory fallbacks", "error", err)
	}
	defer redis.Close()

	// 5. Setup Object Storage
	s3Client, err := storage.NewS3Client(ctx, storage.S3Config{
		Provider:        storage.Provider(cfg.S3Provider),
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
		Region:          cfg.S3Region,
		Bucket:          cfg.CVBucket,
		Endpoint:        cfg.S3Endpoint,
	})
	if err != nil {
		logger.Log.Error("Failed to configure object storage", "error", err)
		os.Exit(1)
	}
	blobs := storage.NewS3Store(s3Client, cfg.CVBucket)

	// 6. Setup Repositories
	userRepo := postgres.NewUserRepository(dbPool)
	jobRepo := postgres.NewJobRepository(dbPool)
	cvRepo := postgres.NewCVAnalysisRepository(dbPool)
	matchRepo := postgres.NewMatchRepository(dbPool)

	// 7. Setup Scoring Engine
	opts, err := cfg.ScoringOptions()
	if err != nil {
		log.Fatalf("Invalid scoring config: %v", err)
	}
	classifier, err := cfg.Classifier()
	if err != nil {
		log.Fatalf("Invalid classifier config: %v", err)
	}
	engine := scoring.NewEngine(opts, classifier)

	// The match flow uses a remote engine when one is configured
	var matchEngine domain.MatchEngine = engine
	if cfg.MatchEngineURL != "" {
		matchEngine = matchclient.NewClient(cfg.MatchEngineURL, cfg.DownstreamTimeout)
		logger.Log.Info("Using remote match engine", "url", cfg.MatchEngineURL)
	}

	var scoreCache domain.ScoreCache
	var scoreKey usecase.Keyer
	if cfg.ScoreCacheTTL > 0 {
		fingerprint := usecase.EngineFingerprint(engine)
		scoreCache = cache.NewScoreCache(redis.Client(), cfg.ScoreCacheTTL, 1024)
		scoreKey = func(req domain.MatchJobRequest) (string, error) {
			return cache.Key(fingerprint, req)
		}
	}

	// 8. Setup UseCases
	validate := validation.New()
	analyzer := analysis.NewClient(cfg.AnalysisServiceURL, cfg.DownstreamTimeout)

	var scanner antivirus.Scanner = antivirus.NewNoOpScanner()
	if cfg.ClamAVAddress != "" {
		clam := antivirus.NewClamAVScanner(cfg.ClamAVAddress, cfg.ClamAVTimeout)
		if !clam.Available(ctx) {
			logger.Log.Warn("clamd not reachable yet, uploads will be rejected until it is", "address", cfg.ClamAVAddress)
		}
		scanner = clam
	}

	authUC := usecase.NewAuthUsecase(userRepo)
	jobUC := usecase.NewJobUsecase(jobRepo)
	matchUC := usecase.NewMatchUsecase(cvRepo, jobRepo, matchRepo, matchEngine, validate, auditLog)
	cvUC := usecase.NewCVUsecase(cvRepo, matchRepo, analyzer, blobs, scanner, auditLog, cfg.CVMaxUploadBytes, cfg.CVURLTTL)
	dashboardUC := usecase.NewDashboardUsecase(matchRepo, jobRepo, cvRepo)
	scoringUC := usecase.NewScoringUsecase(engine, scoreCache, scoreKey)
	healthUC := usecase.NewHealthUsecase(dbPool)

	// 9. Setup Auth Provider (JWKS)
	jwksProvider := auth.NewProvider(cfg.SupabaseUrl + "/auth/v1/.well-known/jwks.json")

	// 10. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		AuthUC:       authUC,
		JobUC:        jobUC,
		MatchUC:      matchUC,
		CVUC:         cvUC,
		DashboardUC:  dashboardUC,
		ScoringUC:    scoringUC,
		HealthUC:     healthUC,
		JWKSProvider: jwksProvider,
		Audit:        auditLog,
		Config:       cfg,
	})

	// 11. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}
