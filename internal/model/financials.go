package model

import (
	"math/big"
	"time"
)

// CampaignChainState 单次链上读取的规范化结果（临时数据，每次对账重算，不落库）
type CampaignChainState struct {
	GrossRaisedNative  *big.Int `json:"gross_raised_native"`
	TipsReceivedNative *big.Int `json:"tips_received_native"`
	EditionsMinted     int64    `json:"editions_minted"`
	Active             bool     `json:"active"`
	Closed             bool     `json:"closed"`
	ReadAtBlock        int64    `json:"read_at_block"`
}

// PriceSource 价格来源
type PriceSource string

const (
	PriceSourceLive     PriceSource = "live"     // 实时行情
	PriceSourceFallback PriceSource = "fallback" // 静态兜底价
)

// PriceQuote 价格报价（只做内存缓存，不持久化）
type PriceQuote struct {
	Symbol     string      `json:"symbol"`
	PriceUsd   float64     `json:"price_usd"`
	FetchedAt  time.Time   `json:"fetched_at"`
	Source     PriceSource `json:"source"`
	Confidence float64     `json:"confidence"` // 0-1
}

// FinancialSource 对账权威数据来源
type FinancialSource string

const (
	FinancialSourceOnchain FinancialSource = "onchain" // 链上合约状态
	FinancialSourceLedger  FinancialSource = "ledger"  // 链下购买台账
)

// CampaignFinancials 对账引擎输出的单活动资金快照
type CampaignFinancials struct {
	CampaignId         int64           `json:"campaign_id"`
	ChainId            int64           `json:"chain_id"`
	GrossRaisedNative  *big.Int        `json:"gross_raised_native"`
	TipsReceivedNative *big.Int        `json:"tips_received_native"`
	GrossRaisedDisplay float64         `json:"gross_raised_display"`
	TipsDisplay        float64         `json:"tips_display"`
	SourceUsed         FinancialSource `json:"source_used"`
	DriftDetected      bool            `json:"drift_detected"`
	PriceConfidence    float64         `json:"price_confidence"`
}

// PendingDistribution 待拨付余额计算结果
type PendingDistribution struct {
	PendingFundsNative *big.Int `json:"pending_funds_native"`
	PendingTipsNative  *big.Int `json:"pending_tips_native"`
	// distributed 超过 raised 属于数据完整性错误，clamp 到 0 并上报
	DistributedExceedsRaised bool `json:"distributed_exceeds_raised"`
	TipsExceedReceived       bool `json:"tips_exceed_received"`
}

// ParseAmount 解析最小单位金额字符串，空串视为 0
func ParseAmount(s string) *big.Int {
	if s == "" {
		return new(big.Int)
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return new(big.Int)
	}
	return v
}
