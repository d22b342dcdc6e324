package handler

import (
	"net/http"

	"soylana/pkg/holderscan"

	"github.com/gin-gonic/gin"
)

// GetTokenPrice 代币当前价格，直连 Solscan 价格源（仅 sol 链）
func (h *Handler) GetTokenPrice(c *gin.Context) {
	addr := c.Param("address")
	if !validAddress(holderscan.ChainSol, addr) {
		abortError(c, http.StatusBadRequest, "malformed token address: "+addr)
		return
	}

	price, err := h.ss.GetTokenPrice(c.Request.Context(), addr)
	if err != nil {
		h.upstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, price)
}

// GetAccountDetail 钱包账户详情，直连 Solscan（仅 sol 链）
func (h *Handler) GetAccountDetail(c *gin.Context) {
	wallet := c.Param("wallet")
	if !validAddress(holderscan.ChainSol, wallet) {
		abortError(c, http.StatusBadRequest, "malformed wallet address: "+wallet)
		return
	}

	detail, err := h.ss.GetAccountDetail(c.Request.Context(), wallet)
	if err != nil {
		h.upstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}
