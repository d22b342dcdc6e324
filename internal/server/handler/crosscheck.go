package handler

import (
	"errors"
	"fmt"
	"net/http"

	"soylana/internal/server/crosscheck"
	"soylana/pkg/holderscan"
	"soylana/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CrossCheck 核心入口：2~10 个 token 的共同钱包交叉查询。
// 这是一个重查询，运行在独立于普通读请求的长超时预算下
func (h *Handler) CrossCheck(c *gin.Context) {
	var req crosscheck.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	// 地址格式在进编排器之前拦掉，省一次无谓的上游调用
	for i, q := range req.Tokens {
		if !validAddress(holderscan.ChainSol, q.Address) {
			abortError(c, http.StatusBadRequest, fmt.Sprintf("tokens[%d]: malformed token address: %s", i, q.Address))
			return
		}
	}

	ctx, span := logger.StartSpanWithRequest(c.Request, "handler", "cross_checker")
	defer span.End()

	result, err := h.orchestrator.CrossCheck(ctx, req)
	if err != nil {
		var ve *crosscheck.ValidationError
		if errors.As(err, &ve) {
			abortError(c, http.StatusBadRequest, ve.Error())
			return
		}
		var te *crosscheck.TimeoutError
		if errors.As(err, &te) {
			abortError(c, http.StatusGatewayTimeout, te.Error())
			return
		}
		var oe *crosscheck.OrchestrationError
		if errors.As(err, &oe) {
			abortError(c, http.StatusBadGateway, oe.Error())
			return
		}
		h.tl.Error("cross-check failed", zap.Error(err))
		abortError(c, http.StatusInternalServerError, err.Error())
		return
	}

	// total_common 为 0 也是正常结果，与失败严格区分
	c.JSON(http.StatusOK, result)
}
