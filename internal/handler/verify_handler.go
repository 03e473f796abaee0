package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/blues/efs/internal/chain"
	"github.com/blues/efs/internal/logic"
	"github.com/gin-gonic/gin"
)

// VerifyHandler 建链交易确认接口
type VerifyHandler struct {
	submissionLogic *logic.SubmissionLogic
}

// NewVerifyHandler 创建确认接口
func NewVerifyHandler(submissionLogic *logic.SubmissionLogic) *VerifyHandler {
	return &VerifyHandler{submissionLogic: submissionLogic}
}

// VerifySubmission 触发单个申请的交易确认
func (h *VerifyHandler) VerifySubmission(c *gin.Context) {
	submissionId, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "invalid submission id")
		return
	}

	outcome, err := h.submissionLogic.VerifySubmission(c.Request.Context(), submissionId)
	if err != nil {
		if errors.Is(err, chain.ErrRpcUnavailable) {
			ErrorResponse(c, http.StatusServiceUnavailable, err.Error())
			return
		}
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "ok", outcome)
}
