package model

import (
	"time"
)

// TipSplitPolicyModel 小费分成策略（每个活动一条，upsert 维护）
type TipSplitPolicyModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CampaignId       int64 `json:"campaign_id" gorm:"not null;uniqueIndex"`
	SubmitterPercent int   `json:"submitter_percent" gorm:"not null;default:100"`
	NonprofitPercent int   `json:"nonprofit_percent" gorm:"not null;default:0"`
}

// DefaultTipSplitPolicy 首次请求时惰性创建的默认策略（100/0）
func DefaultTipSplitPolicy(campaignId int64) TipSplitPolicyModel {
	return TipSplitPolicyModel{
		CampaignId:       campaignId,
		SubmitterPercent: 100,
		NonprofitPercent: 0,
	}
}

// TableName 自定义表名
func (TipSplitPolicyModel) TableName() string {
	return "tip_split_policy"
}
