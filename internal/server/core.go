package server

import (
	"context"
	"net/http"
	"time"

	"soylana/internal/server/cache"
	"soylana/internal/server/config"
	"soylana/internal/server/crosscheck"
	"soylana/internal/server/handler"
	"soylana/internal/server/monitor"
	"soylana/pkg/holderscan"
	"soylana/pkg/solscan"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Core struct {
	cfg        config.Config
	tl         *zap.Logger
	httpServer *http.Server
	metrics    *monitor.MetricsServer
	tokenCache *cache.TokenCache
}

func New(cfg config.Config, logger *zap.Logger) *Core {
	// 上游客户端
	hs := holderscan.NewClient(cfg.HolderScan, logger)
	ss := solscan.NewClient(cfg.Solscan, logger)

	// 代币元数据缓存（可选）
	var tokenCache *cache.TokenCache
	if cfg.Cache.Enable {
		tokenCache = cache.NewTokenCache(cfg.Cache, logger)
	}

	// 交叉查询编排器，两个口径共用一套交集逻辑
	holderFetcher := crosscheck.NewHolderFetcher(hs, ss, holderscan.ChainSol, logger)
	traderFetcher := crosscheck.NewTraderFetcher(ss, logger)
	orchestrator := crosscheck.NewOrchestrator(cfg.CrossCheck, holderFetcher, traderFetcher, logger)

	h := handler.New(cfg, hs, ss, tokenCache, orchestrator, logger)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(corsConfig(cfg.Server)))
	r.Use(metricsMiddleware())
	h.Register(r)

	readTimeout := time.Duration(cfg.Server.ReadTimeout) * time.Second
	if readTimeout <= 0 {
		readTimeout = 30 * time.Second
	}
	// 写超时必须盖得住交叉查询的长预算
	writeTimeout := time.Duration(cfg.Server.WriteTimeout) * time.Second
	if minimum := time.Duration(cfg.CrossCheck.Timeout)*time.Second + 30*time.Second; writeTimeout < minimum {
		writeTimeout = minimum
	}

	return &Core{
		cfg: cfg,
		tl:  logger,
		httpServer: &http.Server{
			Addr:         cfg.Server.Addr,
			Handler:      r,
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
		},
		metrics:    monitor.NewMetricsServer(cfg.Monitor),
		tokenCache: tokenCache,
	}
}

func corsConfig(cfg config.ServerConfig) cors.Config {
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	return cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"*"},
		AllowCredentials: true,
	}
}

// metricsMiddleware 按路由与状态码记录请求耗时
func metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		monitor.HTTPRequestDuration.
			WithLabelValues(route, http.StatusText(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

// Start 启动 API 服务与指标服务
func (c *Core) Start(ctx context.Context) {
	c.metrics.Run()

	c.tl.Info("API server listening", zap.String("addr", c.httpServer.Addr))
	if err := c.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		c.tl.Error("API server exited", zap.Error(err))
	}
}

// Stop 优雅关闭全部资源
func (c *Core) Stop(ctx context.Context) {
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := c.httpServer.Shutdown(shutdownCtx); err != nil {
		c.tl.Error("API server shutdown failed", zap.Error(err))
	}
	if err := c.metrics.Stop(ctx); err != nil {
		c.tl.Error("metrics server shutdown failed", zap.Error(err))
	}
	if c.tokenCache != nil {
		if err := c.tokenCache.Close(); err != nil {
			c.tl.Error("token cache close failed", zap.Error(err))
		}
	}
}
