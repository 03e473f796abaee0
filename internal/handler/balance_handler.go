package handler

import (
	"net/http"
	"strconv"

	"github.com/blues/efs/internal/logic"
	"github.com/gin-gonic/gin"
)

// BalanceHandler 批量余额查询接口
type BalanceHandler struct {
	balanceLogic *logic.BalanceLogic
}

// NewBalanceHandler 创建余额接口
func NewBalanceHandler(balanceLogic *logic.BalanceLogic) *BalanceHandler {
	return &BalanceHandler{balanceLogic: balanceLogic}
}

// GetBalances 批量活动余额
func (h *BalanceHandler) GetBalances(c *gin.Context) {
	filters, err := parseBalanceFilters(c)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	balances, err := h.balanceLogic.GetBalances(c.Request.Context(), filters)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	responses := make([]CampaignBalanceResponse, 0, len(balances))
	for _, balance := range balances {
		responses = append(responses, NewCampaignBalanceResponse(balance))
	}

	SuccessResponse(c, http.StatusOK, "ok", gin.H{
		"balances": responses,
		"total":    len(responses),
	})
}

// GetBalancesSummary 平台级汇总
func (h *BalanceHandler) GetBalancesSummary(c *gin.Context) {
	filters, err := parseBalanceFilters(c)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	summary, err := h.balanceLogic.GetBalancesSummary(c.Request.Context(), filters)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "ok", summary)
}

// parseBalanceFilters 解析查询过滤参数
func parseBalanceFilters(c *gin.Context) (logic.BalanceFilters, error) {
	var filters logic.BalanceFilters

	if raw := c.Query("chain_id"); raw != "" {
		chainId, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return filters, err
		}
		filters.ChainId = &chainId
	}

	if raw := c.Query("is_testnet"); raw != "" {
		isTestnet, err := strconv.ParseBool(raw)
		if err != nil {
			return filters, err
		}
		filters.IsTestnet = &isTestnet
	}

	filters.HasPendingFunds = c.Query("has_pending_funds") == "true"
	filters.HasPendingTips = c.Query("has_pending_tips") == "true"

	return filters, nil
}
