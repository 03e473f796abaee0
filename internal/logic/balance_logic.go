package logic

import (
	"context"
	"errors"
	"math/big"
	"sync"

	"github.com/blues/efs/internal/chain"
	"github.com/blues/efs/internal/logger"
	"github.com/blues/efs/internal/model"
	"github.com/blues/efs/internal/reconcile"
	"github.com/panjf2000/ants/v2"
	"gorm.io/gorm"
)

// ChainStateReader 链上状态读取能力（测试注入假读取器）
type ChainStateReader interface {
	ReadState(ctx context.Context, chainId int64, contractAddress, version string, campaignId int64) (*model.CampaignChainState, error)
}

// LedgerReader 台账求和能力，*LedgerLogic 天然满足
type LedgerReader interface {
	GetPurchaseTotals(campaignId, chainId int64) (*big.Int, *big.Int, error)
	GetDistributedTotals(campaignId int64) (*big.Int, *big.Int, error)
}

// BalanceFilters 批量余额查询过滤条件
type BalanceFilters struct {
	ChainId         *int64
	IsTestnet       *bool
	HasPendingFunds bool
	HasPendingTips  bool
}

// CampaignBalance 单活动余额视图：资金快照或显式错误标签，不会静默丢活动
type CampaignBalance struct {
	Campaign         model.CampaignModel
	Financials       *model.CampaignFinancials
	Pending          *model.PendingDistribution
	DistributedFunds *big.Int
	DistributedTips  *big.Int
	ChainError       string // 链读失败原因（已转台账来源，仅供参考）
	ErrorTag         string // 非空表示该活动快照不可用
	ErrorReason      string
}

// BalanceLogic 批量余额查询：逐活动并发对账后汇总
type BalanceLogic struct {
	db      *gorm.DB
	reader  ChainStateReader
	engine  *reconcile.Engine
	ledger  LedgerReader
	workers int
}

// NewBalanceLogic 创建余额查询逻辑
func NewBalanceLogic(db *gorm.DB, reader ChainStateReader, engine *reconcile.Engine, ledger LedgerReader, workers int) *BalanceLogic {
	if workers <= 0 {
		workers = 10
	}
	return &BalanceLogic{
		db:      db,
		reader:  reader,
		engine:  engine,
		ledger:  ledger,
		workers: workers,
	}
}

// GetBalances 批量计算活动余额。
// 逐活动并发（协程池限流），单个活动的失败只影响自己这一条结果。
func (b *BalanceLogic) GetBalances(ctx context.Context, filters BalanceFilters) ([]CampaignBalance, error) {
	campaigns, err := b.listCampaigns(filters)
	if err != nil {
		return nil, err
	}
	if len(campaigns) == 0 {
		return []CampaignBalance{}, nil
	}

	pool, err := ants.NewPool(b.workers)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	results := make([]CampaignBalance, len(campaigns))
	var wg sync.WaitGroup

	for i, campaign := range campaigns {
		i, campaign := i, campaign
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			results[i] = b.balanceFor(ctx, campaign)
		})
		if err != nil {
			wg.Done()
			results[i] = errorBalance(campaign, "worker_pool", err.Error())
		}
	}
	wg.Wait()

	return applyPendingFilters(results, filters), nil
}

// balanceFor 单活动的完整对账流程
func (b *BalanceLogic) balanceFor(ctx context.Context, campaign model.CampaignModel) CampaignBalance {
	// 整批被取消时不再发起新的外部调用，已算出的部分结果照常返回
	if err := ctx.Err(); err != nil {
		return errorBalance(campaign, "cancelled", err.Error())
	}

	chainState, chainErr := b.reader.ReadState(ctx,
		campaign.ChainId, campaign.ContractAddress, campaign.ContractVersion, campaign.CampaignId)
	if chainErr != nil {
		logger.Warn("Chain read failed for campaign %d on chain %d: %v",
			campaign.CampaignId, campaign.ChainId, chainErr)
	}

	ledgerGross, ledgerTips, err := b.ledger.GetPurchaseTotals(campaign.CampaignId, campaign.ChainId)
	if err != nil {
		return errorBalance(campaign, "ledger_error", err.Error())
	}

	distributedFunds, distributedTips, err := b.ledger.GetDistributedTotals(campaign.CampaignId)
	if err != nil {
		return errorBalance(campaign, "ledger_error", err.Error())
	}

	financials := b.engine.Reconcile(ctx, reconcile.Input{
		Campaign:    campaign,
		ChainState:  chainState,
		ChainErr:    chainErr,
		LedgerGross: ledgerGross,
		LedgerTips:  ledgerTips,
	})

	pending := reconcile.ComputePending(
		financials.GrossRaisedNative, financials.TipsReceivedNative,
		distributedFunds, distributedTips)
	if pending.DistributedExceedsRaised {
		logger.Error("Distributed funds exceed raised for campaign %d on chain %d (distributed=%s raised=%s)",
			campaign.CampaignId, campaign.ChainId,
			distributedFunds.String(), financials.GrossRaisedNative.String())
	}

	balance := CampaignBalance{
		Campaign:         campaign,
		Financials:       financials,
		Pending:          &pending,
		DistributedFunds: distributedFunds,
		DistributedTips:  distributedTips,
	}
	if chainErr != nil {
		balance.ChainError = chainErrorTag(chainErr)
	}
	return balance
}

// GetBalancesSummary 平台级汇总统计
func (b *BalanceLogic) GetBalancesSummary(ctx context.Context, filters BalanceFilters) (map[string]interface{}, error) {
	balances, err := b.GetBalances(ctx, filters)
	if err != nil {
		return nil, err
	}

	totalPendingFunds := new(big.Int)
	totalPendingTips := new(big.Int)
	totalRaisedDisplay := float64(0)
	driftCount := 0
	errorCount := 0

	for _, balance := range balances {
		if balance.ErrorTag != "" {
			errorCount++
			continue
		}
		totalPendingFunds.Add(totalPendingFunds, balance.Pending.PendingFundsNative)
		totalPendingTips.Add(totalPendingTips, balance.Pending.PendingTipsNative)
		totalRaisedDisplay += balance.Financials.GrossRaisedDisplay
		if balance.Financials.DriftDetected {
			driftCount++
		}
	}

	return map[string]interface{}{
		"totalCampaigns":    len(balances),
		"totalRaisedUsd":    totalRaisedDisplay,
		"totalPendingFunds": totalPendingFunds.String(),
		"totalPendingTips":  totalPendingTips.String(),
		"driftedCampaigns":  driftCount,
		"erroredCampaigns":  errorCount,
	}, nil
}

// listCampaigns 按过滤条件取活动列表
func (b *BalanceLogic) listCampaigns(filters BalanceFilters) ([]model.CampaignModel, error) {
	query := b.db.Model(&model.CampaignModel{})
	if filters.ChainId != nil {
		query = query.Where("chain_id = ?", *filters.ChainId)
	}
	if filters.IsTestnet != nil {
		query = query.Where("is_testnet = ?", *filters.IsTestnet)
	}

	var campaigns []model.CampaignModel
	if err := query.Order("chain_id, campaign_id").Find(&campaigns).Error; err != nil {
		return nil, err
	}
	return campaigns, nil
}

// applyPendingFilters 余额过滤只能在对账后做
func applyPendingFilters(balances []CampaignBalance, filters BalanceFilters) []CampaignBalance {
	if !filters.HasPendingFunds && !filters.HasPendingTips {
		return balances
	}

	filtered := make([]CampaignBalance, 0, len(balances))
	for _, balance := range balances {
		if balance.ErrorTag != "" {
			// 出错的活动保留在结果里，让管理员看到
			filtered = append(filtered, balance)
			continue
		}
		if filters.HasPendingFunds && balance.Pending.PendingFundsNative.Sign() <= 0 {
			continue
		}
		if filters.HasPendingTips && balance.Pending.PendingTipsNative.Sign() <= 0 {
			continue
		}
		filtered = append(filtered, balance)
	}
	return filtered
}

func errorBalance(campaign model.CampaignModel, tag, reason string) CampaignBalance {
	return CampaignBalance{
		Campaign:    campaign,
		ErrorTag:    tag,
		ErrorReason: reason,
	}
}

// chainErrorTag 链读错误分类标签
func chainErrorTag(err error) string {
	switch {
	case errors.Is(err, chain.ErrCampaignNotFound):
		return "campaign_not_found"
	case errors.Is(err, chain.ErrDecode):
		return "decode_error"
	case errors.Is(err, chain.ErrRpcUnavailable):
		return "rpc_unavailable"
	default:
		return "chain_error"
	}
}
