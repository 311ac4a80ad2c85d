package commands

import (
	"context"
	"fmt"

	"github.com/wonny/swingscan/internal/brain"
	"github.com/wonny/swingscan/internal/collector"
	"github.com/wonny/swingscan/internal/contracts"
	"github.com/wonny/swingscan/internal/external/alphavantage"
	"github.com/wonny/swingscan/internal/scanconfig"
	"github.com/wonny/swingscan/internal/selection"
	"github.com/wonny/swingscan/internal/store"
	"github.com/wonny/swingscan/pkg/config"
	"github.com/wonny/swingscan/pkg/database"
	"github.com/wonny/swingscan/pkg/httputil"
	"github.com/wonny/swingscan/pkg/logger"
	"github.com/wonny/swingscan/pkg/ratelimit"
	"github.com/wonny/swingscan/pkg/redis"
)

// keyPrefix namespaces every Redis key written by this service
const keyPrefix = "swingscan"

// app holds the wired components shared by the commands
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	profile *scanconfig.Config

	db    *database.DB      // nil when DATABASE_URL is empty
	redis *redis.Client     // disabled client when REDIS_ENABLED=false
	repo  *store.Repository // nil without db

	alphaVantage *alphavantage.Client
	collector    *collector.Collector
	ranker       *selection.Ranker
	orchestrator *brain.Orchestrator
}

// newApp loads configuration and wires every component
func newApp(ctx context.Context) (*app, error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	if logFormat != "" {
		cfg.LogFormat = logFormat
	}
	if profileFile != "" {
		cfg.Scan.ProfileFile = profileFile
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Scan profile (weights + volatility tables)
	profile, err := scanconfig.LoadOrDefault(cfg.Scan.ProfileFile)
	if err != nil {
		return nil, fmt.Errorf("load scan profile: %w", err)
	}

	a := &app{cfg: cfg, log: log, profile: profile}

	// 4. Redis (shared rate limit + response cache)
	a.redis, err = redis.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	// 5. Database (optional snapshot store)
	if cfg.Database.Enabled() {
		a.db, err = database.New(ctx, cfg.Database)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		a.repo = store.NewRepository(a.db.Pool)
		if err := a.repo.EnsureSchema(ctx); err != nil {
			a.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		log.Info("Connected to database")
	}

	// 6. Upstream client behind the request budget
	httpClient := httputil.New(log, cfg.AlphaVantage.Timeout).WithLimiter(a.limiter())
	a.alphaVantage = alphavantage.NewClient(httpClient, cfg.AlphaVantage, redis.NewCache(a.redis, keyPrefix), log)

	// 7. Collector, ranker, orchestrator
	var attrStore contracts.AttributeStore
	if a.repo != nil {
		attrStore = a.repo
	}

	a.collector = collector.NewCollector(a.alphaVantage, attrStore, collector.Config{
		Workers: cfg.Scan.Workers,
		Enrich:  cfg.AlphaVantage.Enrich,
	}, log)
	a.ranker = selection.NewRanker(profile.Params(), cfg.Scan.Workers, log)
	a.orchestrator = brain.NewOrchestrator(a.collector, attrStore, a.ranker, brain.Options{
		DemoFallback: cfg.Scan.DemoMode,
	}, log)

	log.WithFields(map[string]interface{}{
		"profile":  profile.Meta.ProfileID,
		"redis":    a.redis.Enabled(),
		"database": a.db != nil,
		"demo":     cfg.Scan.DemoMode,
	}).Debug("Components wired")

	return a, nil
}

// limiter shares one window across instances when Redis is on,
// otherwise spaces requests in-process
func (a *app) limiter() httputil.Limiter {
	av := a.cfg.AlphaVantage
	if a.redis.Enabled() {
		return redis.NewRateLimiter(a.redis, keyPrefix).For(redis.AlphaVantageRateLimit(av.RequestsPerMinute))
	}
	return ratelimit.NewBucket(ratelimit.Config{
		RequestsPerMinute: av.RequestsPerMinute,
		MinDelay:          av.MinDelay,
	}, ratelimit.SystemClock)
}

// defaultProfile resolves the configured risk profile, falling back to moderate
func (a *app) defaultProfile() contracts.RiskProfile {
	profile, err := contracts.ParseRiskProfile(a.cfg.Scan.RiskProfile)
	if err != nil {
		a.log.WithError(err).Warn("Unknown SCAN_RISK_PROFILE, using moderate")
	}
	return profile
}

// defaultLimit prefers SCAN_LIMIT, then the profile's limit
func (a *app) defaultLimit() int {
	if a.cfg.Scan.Limit > 0 {
		return a.cfg.Scan.Limit
	}
	return a.profile.Scan.Limit
}

// defaultMinScore prefers SCAN_MIN_SCORE, then the profile's threshold
func (a *app) defaultMinScore() float64 {
	if a.cfg.Scan.MinScore > 0 {
		return a.cfg.Scan.MinScore
	}
	return a.profile.Scan.MinScore
}

// Close releases connections
func (a *app) Close() {
	a.db.Close()
	if a.redis != nil {
		_ = a.redis.Close()
	}
}
