package handler

import (
	"context"
	"net/http"

	"soylana/pkg/holderscan"
	"soylana/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// analysisResp 综合分析响应。pnl / wallet_categories / supply_breakdown
// 部分 token 上游没有数据，失败时置 null 而不是整体报错
type analysisResp struct {
	Token            *holderscan.Token            `json:"token"`
	Stats            *holderscan.TokenStats       `json:"stats"`
	HolderDeltas     *holderscan.HolderDeltas     `json:"holder_deltas"`
	HolderBreakdowns *holderscan.HolderBreakdowns `json:"holder_breakdowns"`
	PnL              *holderscan.TokenPnL         `json:"pnl"`
	WalletCategories *holderscan.WalletCategories `json:"wallet_categories"`
	SupplyBreakdown  *holderscan.SupplyBreakdown  `json:"supply_breakdown"`
}

// GetTokenAnalysis 聚合单 token 的全部分析数据，各子查询并发拉取
func (h *Handler) GetTokenAnalysis(c *gin.Context) {
	chain, ok := chainParam(c)
	if !ok {
		return
	}
	addr, ok := h.tokenAddrParam(c, chain)
	if !ok {
		return
	}

	ctx, span := logger.StartSpanWithRequest(c.Request, "handler", "token_analysis")
	defer span.End()

	var resp analysisResp

	p := pool.New().WithContext(ctx).WithCancelOnError().WithFirstError()

	// 必需数据，任一失败整个请求失败
	p.Go(func(ctx context.Context) error {
		token, err := h.hs.GetToken(ctx, chain, addr)
		resp.Token = token
		return err
	})
	p.Go(func(ctx context.Context) error {
		stats, err := h.hs.GetTokenStats(ctx, chain, addr)
		resp.Stats = stats
		return err
	})
	p.Go(func(ctx context.Context) error {
		deltas, err := h.hs.GetHolderDeltas(ctx, chain, addr)
		resp.HolderDeltas = deltas
		return err
	})
	p.Go(func(ctx context.Context) error {
		breakdowns, err := h.hs.GetHolderBreakdowns(ctx, chain, addr)
		resp.HolderBreakdowns = breakdowns
		return err
	})

	// 可选数据，失败置 null
	p.Go(func(ctx context.Context) error {
		pnl, err := h.hs.GetTokenPnL(ctx, chain, addr)
		if err != nil {
			h.tl.Debug("pnl unavailable", zap.String("token", addr), zap.Error(err))
			return nil
		}
		resp.PnL = pnl
		return nil
	})
	p.Go(func(ctx context.Context) error {
		categories, err := h.hs.GetWalletCategories(ctx, chain, addr)
		if err != nil {
			h.tl.Debug("wallet categories unavailable", zap.String("token", addr), zap.Error(err))
			return nil
		}
		resp.WalletCategories = categories
		return nil
	})
	p.Go(func(ctx context.Context) error {
		breakdown, err := h.hs.GetSupplyBreakdown(ctx, chain, addr)
		if err != nil {
			h.tl.Debug("supply breakdown unavailable", zap.String("token", addr), zap.Error(err))
			return nil
		}
		resp.SupplyBreakdown = breakdown
		return nil
	})

	if err := p.Wait(); err != nil {
		h.upstreamError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
