package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"go-jobmatch-backend/internal/domain"
	"go-jobmatch-backend/internal/scoring"
)

type Config struct {
	Port              string
	AppEnv            string
	LogLevel          string
	SwaggerEnabled    bool
	DBUrl             string
	SupabaseUrl       string
	SupabaseJWTSecret string
	FrontendURL       string
	// Redis/Upstash Configuration
	UpstashRedisURL      string
	UpstashRedisPassword string
	// Rate Limiting Configuration
	RateLimitWindowSeconds   int
	RateLimitMatchThreshold  int
	RateLimitGlobalThreshold int
	// CV storage (S3 compatible)
	S3Provider        string
	S3Region          string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3Endpoint        string
	CVBucket          string
	CVMaxUploadBytes  int64
	CVURLTTL          time.Duration
	// Malware scanning; empty address disables it
	ClamAVAddress string
	ClamAVTimeout time.Duration
	// Downstream services
	AnalysisServiceURL string
	MatchEngineURL     string
	DownstreamTimeout  time.Duration
	// Scoring engine
	ScoringTokenMode         string
	ScoringTF                string
	ScoringIDF               string
	ScoringSkillWeight       int
	ScoringParallelThreshold int
	ScoringWorkers           int
	ScoringBudgetBase        time.Duration
	ScoringBudgetPerJob      time.Duration
	ScoringMaxJobs           int
	// Classifier thresholds, best band first
	BandExcellent float64
	BandStrong    float64
	BandGood      float64
	BandModerate  float64
	BandWeak      float64
	// Memoisation of engine responses; zero disables it
	ScoreCacheTTL time.Duration
}

func LoadConfig() (*Config, error) {
	// .env is only present locally
	_ = godotenv.Load()

	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		AppEnv:            getEnv("APP_ENV", "development"),
		LogLevel:          getEnv("LOG_LEVEL", "debug"),
		SwaggerEnabled:    getEnvBool("SWAGGER_ENABLED", true),
		DBUrl:             getEnv("DATABASE_URL", ""),
		SupabaseUrl:       strings.TrimRight(getEnv("SUPABASE_URL", ""), "/"),
		SupabaseJWTSecret: getEnv("SUPABASE_JWT_SECRET", getEnv("SUPABASE_JWT_KEY", "")),
		FrontendURL:       strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),
		// Redis/Upstash Configuration
		UpstashRedisURL:      getEnv("UPSTASH_REDIS_URL", ""),
		UpstashRedisPassword: getEnv("UPSTASH_REDIS_PASSWORD", ""),
		// Rate Limiting Configuration
		RateLimitWindowSeconds:   getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		RateLimitMatchThreshold:  getEnvInt("RATE_LIMIT_MATCH_THRESHOLD", 10),
		RateLimitGlobalThreshold: getEnvInt("RATE_LIMIT_GLOBAL_THRESHOLD", 100),
		// CV storage
		S3Provider:        getEnv("S3_PROVIDER", "aws"),
		S3Region:          getEnv("S3_REGION", "us-east-1"),
		S3AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
		S3Endpoint:        getEnv("S3_ENDPOINT", ""),
		CVBucket:          getEnv("CV_BUCKET", "cvs"),
		CVMaxUploadBytes:  int64(getEnvInt("CV_MAX_UPLOAD_BYTES", 10<<20)),
		CVURLTTL:          getEnvDuration("CV_URL_TTL", 15*time.Minute),
		ClamAVAddress:     getEnv("CLAMAV_ADDRESS", ""),
		ClamAVTimeout:     getEnvDuration("CLAMAV_TIMEOUT", 30*time.Second),
		// Downstream services
		AnalysisServiceURL: strings.TrimRight(getEnv("ANALYSIS_SERVICE_URL", "http://localhost:8000"), "/"),
		MatchEngineURL:     strings.TrimRight(getEnv("MATCH_ENGINE_URL", ""), "/"),
		DownstreamTimeout:  getEnvDuration("DOWNSTREAM_TIMEOUT", 60*time.Second),
		// Scoring engine
		ScoringTokenMode:         getEnv("SCORING_TOKEN_MODE", "full"),
		ScoringTF:                getEnv("SCORING_TF", "raw"),
		ScoringIDF:               getEnv("SCORING_IDF", "standard"),
		ScoringSkillWeight:       getEnvInt("SCORING_SKILL_WEIGHT", 2),
		ScoringParallelThreshold: getEnvInt("SCORING_PARALLEL_THRESHOLD", 20),
		ScoringWorkers:           getEnvInt("SCORING_WORKERS", 4),
		ScoringBudgetBase:        getEnvDuration("SCORING_BUDGET_BASE", 2*time.Second),
		ScoringBudgetPerJob:      getEnvDuration("SCORING_BUDGET_PER_JOB", 50*time.Millisecond),
		ScoringMaxJobs:           getEnvInt("SCORING_MAX_JOBS", 5000),
		// Classifier thresholds
		BandExcellent: getEnvFloat("MATCH_BAND_EXCELLENT", 0.50),
		BandStrong:    getEnvFloat("MATCH_BAND_STRONG", 0.35),
		BandGood:      getEnvFloat("MATCH_BAND_GOOD", 0.25),
		BandModerate:  getEnvFloat("MATCH_BAND_MODERATE", 0.15),
		BandWeak:      getEnvFloat("MATCH_BAND_WEAK", 0.08),
		ScoreCacheTTL: getEnvDuration("SCORE_CACHE_TTL", 10*time.Minute),
	}

	if cfg.DBUrl == "" {
		log.Println("WARNING: DATABASE_URL is missing. Application may fail to connect.")
	}
	if cfg.UpstashRedisURL == "" {
		log.Println("WARNING: UPSTASH_REDIS_URL not configured. Rate limiting will use in-memory fallback and score caching is off.")
	}

	if _, err := cfg.ScoringOptions(); err != nil {
		return nil, err
	}
	if _, err := cfg.Classifier(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ScoringOptions converts the SCORING_* settings into engine options
func (c *Config) ScoringOptions() (scoring.Options, error) {
	mode, err := scoring.ParseTokenMode(c.ScoringTokenMode)
	if err != nil {
		return scoring.Options{}, fmt.Errorf("config: SCORING_TOKEN_MODE: %w", err)
	}
	tf, err := scoring.ParseTFScheme(c.ScoringTF)
	if err != nil {
		return scoring.Options{}, fmt.Errorf("config: SCORING_TF: %w", err)
	}
	idf, err := scoring.ParseIDFScheme(c.ScoringIDF)
	if err != nil {
		return scoring.Options{}, fmt.Errorf("config: SCORING_IDF: %w", err)
	}
	return scoring.Options{
		TokenMode:         mode,
		TF:                tf,
		IDF:               idf,
		SkillWeight:       c.ScoringSkillWeight,
		ParallelThreshold: c.ScoringParallelThreshold,
		Workers:           c.ScoringWorkers,
		BudgetBase:        c.ScoringBudgetBase,
		BudgetPerJob:      c.ScoringBudgetPerJob,
		MaxJobs:           c.ScoringMaxJobs,
	}, nil
}

// Bands returns the configured classifier bands, best first
func (c *Config) Bands() []scoring.Band {
	return []scoring.Band{
		{Label: domain.MatchExcellent, Min: c.BandExcellent},
		{Label: domain.MatchStrong, Min: c.BandStrong},
		{Label: domain.MatchGood, Min: c.BandGood},
		{Label: domain.MatchModerate, Min: c.BandModerate},
		{Label: domain.MatchWeak, Min: c.BandWeak},
		{Label: domain.MatchNone, Min: 0},
	}
}

func (c *Config) Classifier() (*scoring.Classifier, error) {
	cl, err := scoring.NewClassifier(c.Bands())
	if err != nil {
		return nil, fmt.Errorf("config: MATCH_BAND_*: %w", err)
	}
	return cl, nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool returns a boolean environment variable or fallback if not set/invalid
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

// getEnvDuration accepts Go durations ("90s") or plain seconds ("90")
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
