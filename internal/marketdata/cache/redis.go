package cache

import (
	"context"

	"github.com/DamiGo/StockAnalyzer/internal/market"
	"github.com/DamiGo/StockAnalyzer/internal/marketdata"
	"github.com/DamiGo/StockAnalyzer/pkg/logger"
	"github.com/DamiGo/StockAnalyzer/pkg/redis"
)

// RedisCache caches fundamentals and company names, the two lookups
// that change at most daily but cost a request each. With Redis
// disabled every call passes straight through.
type RedisCache struct {
	next  marketdata.Provider
	cache *redis.Cache
	log   *logger.Logger
}

// NewRedisCache wraps a provider with the shared Redis cache
func NewRedisCache(next marketdata.Provider, cache *redis.Cache, log *logger.Logger) *RedisCache {
	return &RedisCache{
		next:  next,
		cache: cache,
		log:   log.WithField("module", "rediscache"),
	}
}

func (r *RedisCache) History(ctx context.Context, ticker string, period marketdata.Period) (market.PriceSeries, error) {
	return r.next.History(ctx, ticker, period)
}

func (r *RedisCache) Recent(ctx context.Context, ticker string, days int) (market.PriceSeries, error) {
	return r.next.Recent(ctx, ticker, days)
}

func (r *RedisCache) Fundamentals(ctx context.Context, ticker string) (market.FundamentalSnapshot, error) {
	var snap market.FundamentalSnapshot
	err := r.cache.GetOrSet(ctx, redis.FundamentalsKey(ticker), &snap, redis.TTLDaily, func() (interface{}, error) {
		return r.next.Fundamentals(ctx, ticker)
	})
	return snap, err
}

func (r *RedisCache) CompanyName(ctx context.Context, ticker string) (string, error) {
	var name string
	err := r.cache.GetOrSet(ctx, redis.CompanyNameKey(ticker), &name, redis.TTLDaily, func() (interface{}, error) {
		return r.next.CompanyName(ctx, ticker)
	})
	return name, err
}
