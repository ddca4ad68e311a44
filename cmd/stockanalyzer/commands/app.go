package commands

import (
	"fmt"

	"github.com/DamiGo/StockAnalyzer/internal/analysis"
	"github.com/DamiGo/StockAnalyzer/internal/marketdata"
	"github.com/DamiGo/StockAnalyzer/internal/marketdata/cache"
	"github.com/DamiGo/StockAnalyzer/internal/marketdata/yahoo"
	"github.com/DamiGo/StockAnalyzer/internal/notify"
	"github.com/DamiGo/StockAnalyzer/internal/portfolio"
	"github.com/DamiGo/StockAnalyzer/internal/proxy"
	"github.com/DamiGo/StockAnalyzer/internal/strategyconfig"
	"github.com/DamiGo/StockAnalyzer/pkg/config"
	"github.com/DamiGo/StockAnalyzer/pkg/httputil"
	"github.com/DamiGo/StockAnalyzer/pkg/logger"
	"github.com/DamiGo/StockAnalyzer/pkg/redis"
)

// app bundles the wired components every command starts from
type app struct {
	cfg      *config.Config
	strategy *strategyconfig.Config
	log      *logger.Logger
	provider marketdata.Provider
	analyzer *analysis.Analyzer
	scanner  *analysis.Scanner
	reviewer *portfolio.Reviewer
	mailer   notify.Mailer
	proxies  *proxy.Manager
}

// initApp loads configuration and builds the provider chain:
// Yahoo client -> Redis fundamentals cache -> CSV price cache -> memo.
func initApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	log := logger.New(cfg)

	path := strategyFile
	if path == "" {
		path = cfg.StrategyFile
	}
	strategy, _, err := strategyconfig.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load strategy %s: %w", path, err)
	}
	for _, warning := range strategyconfig.Warn(strategy) {
		log.WithField("code", warning.Code).Warn(warning.Message)
	}

	hash, err := strategyconfig.Hash(strategy)
	if err != nil {
		return nil, err
	}
	log.WithFields(map[string]interface{}{
		"strategy": strategy.Meta.StrategyID,
		"hash":     hash[:12],
	}).Info("Strategy loaded")

	var proxies *proxy.Manager
	var proxySource httputil.ProxySource
	if strategy.Proxies.Enabled {
		proxies = proxy.NewManager(strategy.Proxies, log)
		proxySource = proxies.Pool()
	}

	yahooClient := yahoo.New(yahoo.Config{
		BaseURL:        cfg.Yahoo.BaseURL,
		UserAgent:      cfg.Yahoo.UserAgent,
		Timeout:        cfg.Yahoo.RequestTimeout,
		RequestsPerSec: cfg.Yahoo.RequestsPerSec,
		ProxySource:    proxySource,
	}, log)

	redisClient, err := redis.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	redisCache := cache.NewRedisCache(yahooClient, redis.NewCache(redisClient, "stockanalyzer"), log)
	fileCache := cache.NewFileCache(redisCache, cfg.CacheDir, cfg.CacheMaxAge, log)
	provider := cache.NewMemo(fileCache)

	analyzer := analysis.New(strategy.AnalysisConfig(), provider, log).
		WithPEGExclusions(strategy.Universe.PEGExclusions)

	return &app{
		cfg:      cfg,
		strategy: strategy,
		log:      log,
		provider: provider,
		analyzer: analyzer,
		scanner:  analysis.NewScanner(analyzer, log),
		reviewer: portfolio.NewReviewer(provider, strategy.AnalysisConfig(), log),
		mailer:   notify.NewSendGrid(cfg.SendGrid, log),
		proxies:  proxies,
	}, nil
}
