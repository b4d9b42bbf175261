package v1

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"go-jobmatch-backend/config"
	"go-jobmatch-backend/internal/delivery/http/middleware"
	"go-jobmatch-backend/internal/domain"
	"go-jobmatch-backend/internal/usecase"
	"go-jobmatch-backend/pkg/audit"
	"go-jobmatch-backend/pkg/auth"
	"go-jobmatch-backend/pkg/validation"
)

type RouterDeps struct {
	AuthUC       domain.AuthUsecase
	JobUC        domain.JobUsecase
	MatchUC      domain.MatchUsecase
	CVUC         domain.CVUsecase
	DashboardUC  domain.DashboardUsecase
	ScoringUC    domain.ScoringUsecase
	HealthUC     usecase.HealthUsecase
	JWKSProvider *auth.Provider
	Audit        *audit.Logger
	Config       *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		validation.RegisterValidators(v)
	}

	cfg := deps.Config
	window := time.Duration(cfg.RateLimitWindowSeconds) * time.Second

	r := gin.New()

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(cfg.FrontendURL, cfg.IsProduction())) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimitMiddleware(middleware.DefaultRateLimitConfig(cfg.RateLimitGlobalThreshold, window), deps.Audit))

	v1 := r.Group("/v1")

	v1.GET("/health", healthHandler(deps.HealthUC))

	// Service-to-service scoring, same contract on both paths
	NewEngineHandler(deps.ScoringUC, r.Group("/api"), v1)

	if cfg.SwaggerEnabled {
		v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Protected routes
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.JWKSProvider, cfg.SupabaseJWTSecret, deps.AuthUC, deps.Audit))
	{
		matchLimit := middleware.RateLimitMiddleware(middleware.MatchRateLimitConfig(cfg.RateLimitMatchThreshold, window), deps.Audit)
		uploadLimit := middleware.RateLimitMiddleware(middleware.UploadRateLimitConfig(window), deps.Audit)

		NewAuthHandler(protected, deps.AuthUC)
		NewJobHandler(protected, deps.JobUC, deps.MatchUC, matchLimit)
		NewCVHandler(protected, deps.CVUC, cfg.CVMaxUploadBytes, uploadLimit)
		NewDashboardHandler(protected, deps.DashboardUC)
	}

	return r
}
