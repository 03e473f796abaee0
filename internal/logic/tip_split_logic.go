package logic

import (
	"errors"
	"fmt"

	"github.com/blues/efs/internal/model"
	"github.com/blues/efs/internal/reconcile"
	"gorm.io/gorm"
)

// TipSplitLogic 小费分成策略维护
type TipSplitLogic struct {
	db *gorm.DB
}

// NewTipSplitLogic 创建分成策略逻辑
func NewTipSplitLogic(db *gorm.DB) *TipSplitLogic {
	return &TipSplitLogic{db: db}
}

// GetPolicy 获取活动的分成策略，首次请求时惰性创建默认的 100/0
func (t *TipSplitLogic) GetPolicy(campaignId int64) (*model.TipSplitPolicyModel, error) {
	policy := model.DefaultTipSplitPolicy(campaignId)
	if err := t.db.Where("campaign_id = ?", campaignId).
		FirstOrCreate(&policy).Error; err != nil {
		return nil, fmt.Errorf("failed to load tip split policy for campaign %d: %w", campaignId, err)
	}
	return &policy, nil
}

// UpsertPolicy 更新分成策略，仅管理员显式操作调用。
// 非法比例在任何拨付计算前拒绝。
func (t *TipSplitLogic) UpsertPolicy(campaignId int64, submitterPercent, nonprofitPercent int) (*model.TipSplitPolicyModel, error) {
	policy := model.TipSplitPolicyModel{
		CampaignId:       campaignId,
		SubmitterPercent: submitterPercent,
		NonprofitPercent: nonprofitPercent,
	}
	if err := reconcile.ValidateSplitPolicy(policy); err != nil {
		return nil, err
	}

	var existing model.TipSplitPolicyModel
	err := t.db.Where("campaign_id = ?", campaignId).First(&existing).Error
	switch {
	case err == nil:
		updates := map[string]interface{}{
			"submitter_percent": submitterPercent,
			"nonprofit_percent": nonprofitPercent,
		}
		if err := t.db.Model(&existing).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update tip split policy for campaign %d: %w", campaignId, err)
		}
		existing.SubmitterPercent = submitterPercent
		existing.NonprofitPercent = nonprofitPercent
		return &existing, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := t.db.Create(&policy).Error; err != nil {
			return nil, fmt.Errorf("failed to create tip split policy for campaign %d: %w", campaignId, err)
		}
		return &policy, nil
	default:
		return nil, fmt.Errorf("failed to load tip split policy for campaign %d: %w", campaignId, err)
	}
}
