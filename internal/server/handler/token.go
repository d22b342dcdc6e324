package handler

import (
	"net/http"
	"strconv"

	"soylana/pkg/holderscan"

	"github.com/gin-gonic/gin"
)

// intQuery 解析整型查询参数并做范围约束
func intQuery(c *gin.Context, name string, def, min, max int) int {
	v, err := strconv.Atoi(c.DefaultQuery(name, strconv.Itoa(def)))
	if err != nil {
		return def
	}
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func floatQuery(c *gin.Context, name string) *float64 {
	raw, ok := c.GetQuery(name)
	if !ok {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}

func (h *Handler) ListTokens(c *gin.Context) {
	chain, ok := chainParam(c)
	if !ok {
		return
	}
	limit := intQuery(c, "limit", 50, 1, 100)
	offset := intQuery(c, "offset", 0, 0, 1<<30)

	total, tokens, err := h.hs.ListTokens(c.Request.Context(), chain, limit, offset)
	if err != nil {
		h.upstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": total, "tokens": tokens})
}

func (h *Handler) GetToken(c *gin.Context) {
	chain, ok := chainParam(c)
	if !ok {
		return
	}
	addr, ok := h.tokenAddrParam(c, chain)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if h.tokenCache != nil {
		if token, found := h.tokenCache.Get(ctx, chain, addr); found {
			c.JSON(http.StatusOK, token)
			return
		}
	}

	token, err := h.hs.GetToken(ctx, chain, addr)
	if err != nil {
		h.upstreamError(c, err)
		return
	}
	if h.tokenCache != nil {
		h.tokenCache.Set(ctx, chain, addr, token)
	}
	c.JSON(http.StatusOK, token)
}

func (h *Handler) GetTokenStats(c *gin.Context) {
	chain, ok := chainParam(c)
	if !ok {
		return
	}
	addr, ok := h.tokenAddrParam(c, chain)
	if !ok {
		return
	}

	stats, err := h.hs.GetTokenStats(c.Request.Context(), chain, addr)
	if err != nil {
		h.upstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) GetTokenPnL(c *gin.Context) {
	chain, ok := chainParam(c)
	if !ok {
		return
	}
	addr, ok := h.tokenAddrParam(c, chain)
	if !ok {
		return
	}

	pnl, err := h.hs.GetTokenPnL(c.Request.Context(), chain, addr)
	if err != nil {
		h.upstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, pnl)
}

func (h *Handler) GetWalletCategories(c *gin.Context) {
	chain, ok := chainParam(c)
	if !ok {
		return
	}
	addr, ok := h.tokenAddrParam(c, chain)
	if !ok {
		return
	}

	categories, err := h.hs.GetWalletCategories(c.Request.Context(), chain, addr)
	if err != nil {
		h.upstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (h *Handler) GetSupplyBreakdown(c *gin.Context) {
	chain, ok := chainParam(c)
	if !ok {
		return
	}
	addr, ok := h.tokenAddrParam(c, chain)
	if !ok {
		return
	}

	breakdown, err := h.hs.GetSupplyBreakdown(c.Request.Context(), chain, addr)
	if err != nil {
		h.upstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, breakdown)
}

func (h *Handler) GetHolders(c *gin.Context) {
	chain, ok := chainParam(c)
	if !ok {
		return
	}
	addr, ok := h.tokenAddrParam(c, chain)
	if !ok {
		return
	}

	params := holderscan.HolderListParams{
		MinAmount: floatQuery(c, "minAmount"),
		MaxAmount: floatQuery(c, "maxAmount"),
		Limit:     intQuery(c, "limit", 50, 1, 100),
		Offset:    intQuery(c, "offset", 0, 0, 1<<30),
	}

	holders, err := h.hs.GetHolders(c.Request.Context(), chain, addr, params)
	if err != nil {
		h.upstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, holders)
}

func (h *Handler) GetHolderDeltas(c *gin.Context) {
	chain, ok := chainParam(c)
	if !ok {
		return
	}
	addr, ok := h.tokenAddrParam(c, chain)
	if !ok {
		return
	}

	deltas, err := h.hs.GetHolderDeltas(c.Request.Context(), chain, addr)
	if err != nil {
		h.upstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, deltas)
}

func (h *Handler) GetHolderBreakdowns(c *gin.Context) {
	chain, ok := chainParam(c)
	if !ok {
		return
	}
	addr, ok := h.tokenAddrParam(c, chain)
	if !ok {
		return
	}

	breakdowns, err := h.hs.GetHolderBreakdowns(c.Request.Context(), chain, addr)
	if err != nil {
		h.upstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, breakdowns)
}

func (h *Handler) GetWalletStats(c *gin.Context) {
	chain, ok := chainParam(c)
	if !ok {
		return
	}
	addr, ok := h.tokenAddrParam(c, chain)
	if !ok {
		return
	}
	wallet := c.Param("wallet")
	if !validAddress(chain, wallet) {
		abortError(c, http.StatusBadRequest, "malformed wallet address: "+wallet)
		return
	}

	stats, err := h.hs.GetWalletStats(c.Request.Context(), chain, addr, wallet)
	if err != nil {
		h.upstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
