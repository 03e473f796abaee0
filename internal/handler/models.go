package handler

import (
	"github.com/blues/efs/internal/logic"
)

// 通用响应结构
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// CampaignBalanceResponse 单活动余额视图。
// 原生金额用十进制字符串承载，避免 JSON number 精度丢失。
type CampaignBalanceResponse struct {
	CampaignId      int64  `json:"campaignId"`
	ChainId         int64  `json:"chainId"`
	ContractAddress string `json:"contractAddress"`
	ContractVersion string `json:"contractVersion"`
	IsTestnet       bool   `json:"isTestnet"`
	NativeSymbol    string `json:"nativeSymbol"`
	Active          bool   `json:"active"`
	Closed          bool   `json:"closed"`

	GrossRaisedNative  string  `json:"grossRaisedNative,omitempty"`
	TipsReceivedNative string  `json:"tipsReceivedNative,omitempty"`
	GrossRaisedUsd     float64 `json:"grossRaisedUsd"`
	TipsReceivedUsd    float64 `json:"tipsReceivedUsd"`
	DistributedNative  string  `json:"distributedNative,omitempty"`
	TipsDistributed    string  `json:"tipsDistributedNative,omitempty"`
	PendingFundsNative string  `json:"pendingFundsNative,omitempty"`
	PendingTipsNative  string  `json:"pendingTipsNative,omitempty"`

	SourceUsed               string  `json:"sourceUsed,omitempty"`
	DriftDetected            bool    `json:"driftDetected"`
	DistributedExceedsRaised bool    `json:"distributedExceedsRaised"`
	PriceConfidence          float64 `json:"priceConfidence"`
	ChainError               string  `json:"chainError,omitempty"`

	// 快照不可用时的显式错误标签与原因，活动不会被静默丢掉
	ErrorTag    string `json:"errorTag,omitempty"`
	ErrorReason string `json:"errorReason,omitempty"`
}

// NewCampaignBalanceResponse 从 logic 层结果构建视图
func NewCampaignBalanceResponse(balance logic.CampaignBalance) CampaignBalanceResponse {
	resp := CampaignBalanceResponse{
		CampaignId:      balance.Campaign.CampaignId,
		ChainId:         balance.Campaign.ChainId,
		ContractAddress: balance.Campaign.ContractAddress,
		ContractVersion: balance.Campaign.ContractVersion,
		IsTestnet:       balance.Campaign.IsTestnet,
		NativeSymbol:    balance.Campaign.NativeCurrencySymbol,
		Active:          balance.Campaign.Active,
		Closed:          balance.Campaign.Closed,
		ChainError:      balance.ChainError,
		ErrorTag:        balance.ErrorTag,
		ErrorReason:     balance.ErrorReason,
	}

	if balance.ErrorTag != "" {
		return resp
	}

	resp.GrossRaisedNative = balance.Financials.GrossRaisedNative.String()
	resp.TipsReceivedNative = balance.Financials.TipsReceivedNative.String()
	resp.GrossRaisedUsd = balance.Financials.GrossRaisedDisplay
	resp.TipsReceivedUsd = balance.Financials.TipsDisplay
	resp.SourceUsed = string(balance.Financials.SourceUsed)
	resp.DriftDetected = balance.Financials.DriftDetected
	resp.PriceConfidence = balance.Financials.PriceConfidence
	resp.DistributedNative = balance.DistributedFunds.String()
	resp.TipsDistributed = balance.DistributedTips.String()
	resp.PendingFundsNative = balance.Pending.PendingFundsNative.String()
	resp.PendingTipsNative = balance.Pending.PendingTipsNative.String()
	resp.DistributedExceedsRaised = balance.Pending.DistributedExceedsRaised

	return resp
}

// TipSplitRequest 更新分成策略请求
type TipSplitRequest struct {
	SubmitterPercent *int `json:"submitterPercent" binding:"required"`
	NonprofitPercent *int `json:"nonprofitPercent" binding:"required"`
}

// TipSplitResponse 分成策略响应
type TipSplitResponse struct {
	CampaignId       int64 `json:"campaignId"`
	SubmitterPercent int   `json:"submitterPercent"`
	NonprofitPercent int   `json:"nonprofitPercent"`
}
