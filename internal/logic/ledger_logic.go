package logic

import (
	"fmt"
	"math/big"

	"github.com/blues/efs/internal/model"
	"gorm.io/gorm"
)

// LedgerLogic 链下台账读取
type LedgerLogic struct {
	db *gorm.DB
}

// NewLedgerLogic 创建台账读取逻辑
func NewLedgerLogic(db *gorm.DB) *LedgerLogic {
	return &LedgerLogic{db: db}
}

// GetPurchaseTotals 汇总单活动的购买金额与小费（最小单位）
func (l *LedgerLogic) GetPurchaseTotals(campaignId, chainId int64) (*big.Int, *big.Int, error) {
	var totals struct {
		Gross string
		Tips  string
	}

	err := l.db.Raw(`
		SELECT
			COALESCE(SUM(amount_native), 0)::text AS gross,
			COALESCE(SUM(tip_native), 0)::text AS tips
		FROM purchase_record
		WHERE campaign_id = ? AND chain_id = ?
	`, campaignId, chainId).Scan(&totals).Error
	if err != nil {
		return nil, nil, fmt.Errorf("failed to sum purchase records for campaign %d: %w", campaignId, err)
	}

	return model.ParseAmount(totals.Gross), model.ParseAmount(totals.Tips), nil
}

// GetDistributedTotals 汇总单活动的历史拨付（按类型）。
// 累计值永远现算，不落可变计数器，避免计数器和明细漂移。
func (l *LedgerLogic) GetDistributedTotals(campaignId int64) (*big.Int, *big.Int, error) {
	var rows []struct {
		Kind  string
		Total string
	}

	err := l.db.Raw(`
		SELECT kind, COALESCE(SUM(amount_native), 0)::text AS total
		FROM distribution_record
		WHERE campaign_id = ?
		GROUP BY kind
	`, campaignId).Scan(&rows).Error
	if err != nil {
		return nil, nil, fmt.Errorf("failed to sum distribution records for campaign %d: %w", campaignId, err)
	}

	funds := new(big.Int)
	tips := new(big.Int)
	for _, row := range rows {
		switch model.DistributionKind(row.Kind) {
		case model.DistributionKindFunds:
			funds = model.ParseAmount(row.Total)
		case model.DistributionKindTips:
			tips = model.ParseAmount(row.Total)
		}
	}
	return funds, tips, nil
}

// GetPurchases 单活动购买明细
func (l *LedgerLogic) GetPurchases(campaignId int64) ([]model.PurchaseRecordModel, error) {
	var records []model.PurchaseRecordModel
	if err := l.db.Where("campaign_id = ?", campaignId).
		Order("created_at ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch purchase records: %w", err)
	}
	return records, nil
}

// GetDistributions 单活动拨付明细
func (l *LedgerLogic) GetDistributions(campaignId int64) ([]model.DistributionRecordModel, error) {
	var records []model.DistributionRecordModel
	if err := l.db.Where("campaign_id = ?", campaignId).
		Order("executed_at ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch distribution records: %w", err)
	}
	return records, nil
}
