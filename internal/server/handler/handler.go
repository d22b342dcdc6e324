package handler

import (
	"errors"
	"net/http"

	"soylana/internal/server/cache"
	"soylana/internal/server/config"
	"soylana/internal/server/crosscheck"
	"soylana/pkg/holderscan"
	"soylana/pkg/solscan"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler 聚合所有 API 路由的依赖
type Handler struct {
	cfg          config.Config
	tl           *zap.Logger
	hs           *holderscan.Client
	ss           *solscan.Client
	tokenCache   *cache.TokenCache // 为 nil 时不走缓存
	orchestrator *crosscheck.Orchestrator
}

func New(cfg config.Config, hs *holderscan.Client, ss *solscan.Client, tokenCache *cache.TokenCache, orchestrator *crosscheck.Orchestrator, logger *zap.Logger) *Handler {
	return &Handler{
		cfg:          cfg,
		tl:           logger,
		hs:           hs,
		ss:           ss,
		tokenCache:   tokenCache,
		orchestrator: orchestrator,
	}
}

// Register 挂载全部路由
func (h *Handler) Register(r gin.IRouter) {
	api := r.Group("/api")

	api.GET("/health", h.Health)

	api.GET("/tokens", h.ListTokens)
	api.GET("/tokens/:address", h.GetToken)
	api.GET("/tokens/:address/stats", h.GetTokenStats)
	api.GET("/tokens/:address/pnl", h.GetTokenPnL)
	api.GET("/tokens/:address/wallet-categories", h.GetWalletCategories)
	api.GET("/tokens/:address/supply-breakdown", h.GetSupplyBreakdown)
	api.GET("/tokens/:address/analysis", h.GetTokenAnalysis)

	api.GET("/tokens/:address/holders", h.GetHolders)
	api.GET("/tokens/:address/holders/deltas", h.GetHolderDeltas)
	api.GET("/tokens/:address/holders/breakdowns", h.GetHolderBreakdowns)

	api.GET("/tokens/:address/wallet/:wallet", h.GetWalletStats)

	api.GET("/tokens/:address/price", h.GetTokenPrice)
	api.GET("/wallets/:wallet", h.GetAccountDetail)

	api.POST("/cross-checker", h.CrossCheck)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// chainParam 解析 ?chain= 参数，默认 sol
func chainParam(c *gin.Context) (string, bool) {
	chain := c.DefaultQuery("chain", holderscan.ChainSol)
	if chain != holderscan.ChainSol && chain != holderscan.ChainEth {
		abortError(c, http.StatusBadRequest, "chain must be sol or eth")
		return "", false
	}
	return chain, true
}

// validAddress 按链校验地址格式：sol 走 base58 公钥解析，eth 走十六进制校验
func validAddress(chain, addr string) bool {
	if addr == "" {
		return false
	}
	switch chain {
	case holderscan.ChainEth:
		return ethcommon.IsHexAddress(addr)
	default:
		_, err := solana.PublicKeyFromBase58(addr)
		return err == nil
	}
}

// tokenAddrParam 提取并校验路径里的 token 地址
func (h *Handler) tokenAddrParam(c *gin.Context, chain string) (string, bool) {
	addr := c.Param("address")
	if !validAddress(chain, addr) {
		abortError(c, http.StatusBadRequest, "malformed token address: "+addr)
		return "", false
	}
	return addr, true
}

// abortError 统一错误响应格式，前端靠 detail 字段渲染
func abortError(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": detail})
}

// upstreamError 透传上游状态码，其余按 500 处理
func (h *Handler) upstreamError(c *gin.Context, err error) {
	var hsErr *holderscan.APIError
	if errors.As(err, &hsErr) {
		abortError(c, hsErr.StatusCode, err.Error())
		return
	}
	var ssErr *solscan.APIError
	if errors.As(err, &ssErr) {
		abortError(c, ssErr.StatusCode, err.Error())
		return
	}
	h.tl.Error("upstream request failed", zap.Error(err))
	abortError(c, http.StatusInternalServerError, err.Error())
}
