package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/blues/efs/internal/logic"
	"github.com/blues/efs/internal/reconcile"
	"github.com/gin-gonic/gin"
)

// TipSplitHandler 小费分成策略接口
type TipSplitHandler struct {
	tipSplitLogic *logic.TipSplitLogic
}

// NewTipSplitHandler 创建分成策略接口
func NewTipSplitHandler(tipSplitLogic *logic.TipSplitLogic) *TipSplitHandler {
	return &TipSplitHandler{tipSplitLogic: tipSplitLogic}
}

// GetTipSplit 获取分成策略（无则惰性创建默认 100/0）
func (h *TipSplitHandler) GetTipSplit(c *gin.Context) {
	campaignId, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "invalid campaign id")
		return
	}

	policy, err := h.tipSplitLogic.GetPolicy(campaignId)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "ok", TipSplitResponse{
		CampaignId:       policy.CampaignId,
		SubmitterPercent: policy.SubmitterPercent,
		NonprofitPercent: policy.NonprofitPercent,
	})
}

// UpdateTipSplit 更新分成策略
func (h *TipSplitHandler) UpdateTipSplit(c *gin.Context) {
	campaignId, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "invalid campaign id")
		return
	}

	var req TipSplitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	policy, err := h.tipSplitLogic.UpsertPolicy(campaignId, *req.SubmitterPercent, *req.NonprofitPercent)
	if err != nil {
		if errors.Is(err, reconcile.ErrInvalidSplitPolicy) {
			ErrorResponse(c, http.StatusUnprocessableEntity, err.Error())
			return
		}
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "tip split policy updated", TipSplitResponse{
		CampaignId:       policy.CampaignId,
		SubmitterPercent: policy.SubmitterPercent,
		NonprofitPercent: policy.NonprofitPercent,
	})
}
