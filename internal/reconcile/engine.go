package reconcile

import (
	"context"
	"errors"
	"math/big"
	"time"

	"github.com/blues/efs/internal/chain"
	"github.com/blues/efs/internal/logger"
	"github.com/blues/efs/internal/model"
)

// driftToleranceBps 漂移容差：万分之五十（0.5%）
const driftToleranceBps = 50

// Converter 原生金额到 USD 显示金额的换算能力（由价格服务提供）
type Converter interface {
	Display(ctx context.Context, amountNative *big.Int, chainId int64, maxAge time.Duration) (float64, float64, error)
}

// Input 单活动对账输入。链读取与台账读取由调用方完成，
// 引擎本身无副作用，同样的输入永远给出同样的快照。
type Input struct {
	Campaign    model.CampaignModel
	ChainState  *model.CampaignChainState // 链读成功时非 nil
	ChainErr    error                     // 链读失败原因
	LedgerGross *big.Int                  // 台账购买金额合计
	LedgerTips  *big.Int                  // 台账小费合计
}

// Engine 对账引擎：在链上状态与链下台账之间选定权威来源并检测漂移
type Engine struct {
	primaryChainId int64
	converter      Converter
	maxPriceAge    time.Duration
}

// NewEngine 创建对账引擎
func NewEngine(primaryChainId int64, converter Converter, maxPriceAge time.Duration) *Engine {
	return &Engine{
		primaryChainId: primaryChainId,
		converter:      converter,
		maxPriceAge:    maxPriceAge,
	}
}

// Reconcile 生成单活动资金快照。
// 来源选择：主生产链且链读成功时以链上为准；测试网、其他链、
// 或链读失败时以台账求和为准。两边都可得时比对漂移，只报告不修正。
func (e *Engine) Reconcile(ctx context.Context, in Input) *model.CampaignFinancials {
	ledgerGross := orZero(in.LedgerGross)
	ledgerTips := orZero(in.LedgerTips)

	financials := &model.CampaignFinancials{
		CampaignId: in.Campaign.CampaignId,
		ChainId:    in.Campaign.ChainId,
	}

	if e.useOnchain(in) {
		financials.SourceUsed = model.FinancialSourceOnchain
		financials.GrossRaisedNative = in.ChainState.GrossRaisedNative
		financials.TipsReceivedNative = in.ChainState.TipsReceivedNative
	} else {
		financials.SourceUsed = model.FinancialSourceLedger
		financials.GrossRaisedNative = ledgerGross
		financials.TipsReceivedNative = ledgerTips
	}

	// 漂移：两个来源都可得且差值超出容差。单边可得时无从比较，不默认为真。
	if in.ChainState != nil {
		financials.DriftDetected = exceedsTolerance(in.ChainState.GrossRaisedNative, ledgerGross)
	}
	// 解码失败意味着版本兼容缺陷，按漂移上报
	if errors.Is(in.ChainErr, chain.ErrDecode) {
		financials.DriftDetected = true
	}

	e.fillDisplay(ctx, financials)
	return financials
}

// useOnchain 链上状态是否为权威来源
func (e *Engine) useOnchain(in Input) bool {
	if in.ChainState == nil {
		return false
	}
	return in.Campaign.ChainId == e.primaryChainId && !in.Campaign.IsTestnet
}

// fillDisplay 换算 USD 显示金额。价格不可用只降级置信度，从不让快照失败。
func (e *Engine) fillDisplay(ctx context.Context, financials *model.CampaignFinancials) {
	display, confidence, err := e.converter.Display(ctx, financials.GrossRaisedNative, financials.ChainId, e.maxPriceAge)
	if err != nil {
		logger.Warn("Display conversion unavailable for campaign %d on chain %d: %v",
			financials.CampaignId, financials.ChainId, err)
		return
	}
	financials.GrossRaisedDisplay = display
	financials.PriceConfidence = confidence

	tipsDisplay, _, err := e.converter.Display(ctx, financials.TipsReceivedNative, financials.ChainId, e.maxPriceAge)
	if err == nil {
		financials.TipsDisplay = tipsDisplay
	}
}

// exceedsTolerance 差值是否超出 max(0.5%, 1 个最小单位)
func exceedsTolerance(onchain, ledger *big.Int) bool {
	onchain = orZero(onchain)
	ledger = orZero(ledger)

	diff := new(big.Int).Sub(onchain, ledger)
	diff.Abs(diff)
	if diff.Sign() == 0 {
		return false
	}

	larger := onchain
	if ledger.Cmp(onchain) > 0 {
		larger = ledger
	}

	// tolerance = max(larger * 50 / 10000, 1)
	tolerance := new(big.Int).Mul(larger, big.NewInt(driftToleranceBps))
	tolerance.Quo(tolerance, big.NewInt(10000))
	if tolerance.Sign() == 0 {
		tolerance.SetInt64(1)
	}

	return diff.Cmp(tolerance) > 0
}
