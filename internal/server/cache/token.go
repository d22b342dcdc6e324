package cache

import (
	"context"
	"fmt"
	"time"

	"soylana/internal/server/config"
	"soylana/internal/server/monitor"
	"soylana/pkg/holderscan"

	"github.com/bytedance/sonic"
	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const localCleanupInterval = time.Minute

// TokenCache 代币元数据两级读缓存：先本地后 Redis。
// 只缓存基本不变的展示元信息（名称、精度、供应量），
// 持有人数据一律不进缓存，交叉查询每次都重新拉取
type TokenCache struct {
	tl         *zap.Logger
	localCache *cache.Cache
	rds        *redis.Client // 为 nil 时只用本地缓存
	ttl        time.Duration
}

func NewTokenCache(cfg config.CacheConfig, logger *zap.Logger) *TokenCache {
	ttl := time.Duration(cfg.TokenTTL) * time.Second
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}

	var rds *redis.Client
	if cfg.Address != "" {
		rds = redis.NewClient(&redis.Options{
			Addr:     cfg.Address,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
	}

	return &TokenCache{
		tl:         logger,
		localCache: cache.New(ttl, localCleanupInterval),
		rds:        rds,
		ttl:        ttl,
	}
}

func tokenKey(chain, tokenAddr string) string {
	return fmt.Sprintf("soylana:token:%s:%s", chain, tokenAddr)
}

// Get 先查本地缓存，未命中再查 Redis 并回填本地
func (c *TokenCache) Get(ctx context.Context, chain, tokenAddr string) (*holderscan.Token, bool) {
	key := tokenKey(chain, tokenAddr)

	if cached, found := c.localCache.Get(key); found {
		if token, ok := cached.(*holderscan.Token); ok {
			monitor.TokenCacheHits.WithLabelValues("local").Inc()
			return token, true
		}
	}

	if c.rds != nil {
		cached, err := c.rds.Get(ctx, key).Result()
		if err == nil {
			var token holderscan.Token
			if sonic.Unmarshal([]byte(cached), &token) == nil {
				c.localCache.Set(key, &token, cache.DefaultExpiration)
				monitor.TokenCacheHits.WithLabelValues("redis").Inc()
				return &token, true
			}
		}
	}

	monitor.TokenCacheHits.WithLabelValues("miss").Inc()
	return nil, false
}

// Set 双写本地与 Redis，Redis 写失败只记日志不影响请求
func (c *TokenCache) Set(ctx context.Context, chain, tokenAddr string, token *holderscan.Token) {
	key := tokenKey(chain, tokenAddr)
	c.localCache.Set(key, token, cache.DefaultExpiration)

	if c.rds != nil {
		data, err := sonic.Marshal(token)
		if err != nil {
			return
		}
		if err := c.rds.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.tl.Warn("token cache redis set failed", zap.String("key", key), zap.Error(err))
		}
	}
}

// Close 释放 Redis 连接
func (c *TokenCache) Close() error {
	if c.rds != nil {
		return c.rds.Close()
	}
	return nil
}
